package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/maplewoodlane/engine/pkg/content"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <pack.json>\n", os.Args[0])
		os.Exit(1)
	}

	filename := os.Args[1]
	validator := &PackValidator{}

	if err := validator.validateFile(filename); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Content pack is valid!")
}

type PackValidator struct {
	errors []string
}

func (v *PackValidator) validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	baseName := filepath.Base(filename)
	if !strings.HasSuffix(baseName, ".json") {
		return fmt.Errorf("pack file must have .json extension: %s", baseName)
	}

	nameWithoutExt := strings.TrimSuffix(baseName, ".json")
	if !isValidPackFilename(nameWithoutExt) {
		return fmt.Errorf("pack filename '%s' must be lowercase snake_case (e.g., my_pack.json, not my-pack.json or MyPack.json)", baseName)
	}

	p, err := content.LoadFile(filename)
	if err != nil {
		return err
	}

	v.errors = nil
	v.validatePack(p)

	if err := p.Validate(); err != nil {
		v.addError(err.Error())
	}

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}

	return nil
}

// validatePack enforces id naming conventions. Referential integrity is
// checked by content.Pack.Validate.
func (v *PackValidator) validatePack(p *content.Pack) {
	for _, ch := range p.Characters {
		v.validateIDFormat("character ID", ch.ID)
	}

	for characterID, nodes := range p.Dialogues {
		v.validateIDFormat("dialogue character ID", characterID)
		for _, n := range nodes {
			v.validateIDFormat("dialogue node ID", n.ID)
		}
	}

	for _, ev := range p.Events {
		v.validateIDFormat("event ID", ev.ID)
	}

	for _, tr := range p.Triggers {
		v.validateIDFormat("trigger ID", tr.ID)
	}

	for clueID := range p.Clues {
		v.validateIDFormat("clue ID", clueID)
	}

	for _, e := range p.Endings {
		v.validateIDFormat("ending name", e.Name)
	}
}

func (v *PackValidator) validateIDFormat(fieldName, id string) {
	if id == "" {
		return
	}

	if !isValidID(id) {
		v.addError(fmt.Sprintf("  - %s '%s' should be lowercase snake_case", fieldName, id))
	}
}

func (v *PackValidator) addError(msg string) {
	v.errors = append(v.errors, msg)
}

var (
	validIDRegex       = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)
	validFilenameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)
)

func isValidID(id string) bool {
	return validIDRegex.MatchString(id)
}

func isValidPackFilename(name string) bool {
	// Allow 'x.' prefix for experimental packs
	name = strings.TrimPrefix(name, "x.")
	return validFilenameRegex.MatchString(name)
}
