package football

import (
	"strings"
)

var fixedClassifications = map[string]Classification{
	KindKickOff:        {Categories: []Category{CategoryEvent}, Text: "Anstoss"},
	KindHalftime:       {Categories: []Category{CategoryEvent}, Text: "Halbzeit"},
	KindSecondHalf:     {Categories: []Category{CategoryEvent}, Text: "Beginn der 2. Halbzeit"},
	KindMatchPostponed: {Categories: []Category{CategoryEvent}, Text: "Spiel verschoben"},
	KindMatchFinished:  {Categories: []Category{CategoryResult, CategoryEvent}, Text: "Spielende"},
}

// Classify maps an event kind to its categories and German notification
// text. Matching is case sensitive; unknown kinds report false.
func Classify(kind string) (Classification, bool) {
	if c, ok := fixedClassifications[kind]; ok {
		return Classification{
			Categories: append([]Category(nil), c.Categories...),
			Text:       c.Text,
		}, true
	}

	if strings.HasPrefix(kind, kindGoalPrefix) {
		return Classification{
			Categories: []Category{CategoryGoal},
			Text:       strings.Replace(kind, kindGoalForPrefix, localizedGoalPrefix, 1),
		}, true
	}

	return Classification{}, false
}

// IsMatchFinished reports whether the event closes a match.
func (e Event) IsMatchFinished() bool {
	return e.Kind == KindMatchFinished
}
