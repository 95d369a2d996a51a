package ending

import "github.com/maplewoodlane/engine/pkg/conditions"

func intPtr(i int) *int { return &i }
func boolPtr(b bool) *bool { return &b }

// DefaultKeyClues are the clues that close the case. Missing any of them
// feeds the missing-key-clues signal.
var DefaultKeyClues = []string{
	"bus_ticket",
	"iris_journal",
	"arnold_letter",
}

// DefaultRedHerrings are theory phrases that lead nowhere.
var DefaultRedHerrings = []string{
	"garden shears",
	"mailman",
	"traveling salesman",
}

// DefaultEndings is the built-in ending table, in priority order. The
// order is load-bearing: a state satisfying several entries resolves to
// the earliest, and the final entry matches everything.
var DefaultEndings = []Ending{
	{
		Name:        "full_truth",
		Description: "Evan pieces together what really happened to Iris, and the neighborhood finally hears it out loud.",
		Tone:        "bittersweet",
		Criteria: &Criteria{
			CluePercentMin: intPtr(80),
			Requirements: &conditions.Requirements{
				Clues:      DefaultKeyClues,
				PhotoTypes: []string{"portrait", "location", "evidence"},
			},
			TrustFloors: map[string]int{
				"mrs_finch": 60,
				"mr_arnold": 40,
				"camille":   30,
			},
		},
		Epilogues: map[string]string{
			"mrs_finch": "Mrs. Finch plants irises along her fence the next spring.",
			"mr_arnold": "Mr. Arnold finally mails the letter he kept in his desk.",
			"camille":   "Camille starts answering her door again.",
		},
	},
	{
		Name:        "supernatural",
		Description: "Evan's theory drifts into ghosts and omens. The neighbors nod politely and stop returning his calls.",
		Tone:        "eerie",
		Criteria: &Criteria{
			SupernaturalFocus: boolPtr(true),
		},
		Epilogues: map[string]string{
			"mrs_finch": "Mrs. Finch keeps her porch light on all night now.",
		},
	},
	{
		Name:        "community_silence",
		Description: "Nobody on Maplewood Lane trusts Evan enough to talk. The case closes itself the way it always does here: quietly.",
		Tone:        "cold",
		Criteria: &Criteria{
			AverageTrustMax: intPtr(25),
			ForbiddenClues:  DefaultKeyClues,
		},
		Epilogues: map[string]string{
			"camille": "Camille watches Evan's car leave from behind her curtains.",
		},
	},
	{
		Name:        "false_trail",
		Description: "Evan builds a tidy case around the wrong things. It holds up right until someone checks.",
		Tone:        "ironic",
		Criteria: &Criteria{
			FollowedRedHerrings: boolPtr(true),
		},
	},
	{
		Name:        "misguided_conclusion",
		Description: "Evan leaves Maplewood Lane with a notebook full of half-answers and a feeling he missed something.",
		Tone:        "unresolved",
		// No criteria: the unconditional catch-all.
	},
}
