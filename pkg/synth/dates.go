/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: dates.go
Description: Date layout detection for synthesized date strings
*/

package synth

import (
	"time"

	"github.com/kleascm/mockjson/pkg/profile"
	"github.com/kleascm/mockjson/pkg/shape"
)

// DefaultDateLayout is day.month.year, the layout of the example corpora
const DefaultDateLayout = "02.01.2006"

var dateLayouts = []string{
	"02.01.2006",
	"02/01/2006",
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"02.01.06",
	"02/01/06",
}

// DetectLayout returns the layout a date string was written in
func DetectLayout(s string) (string, bool) {
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return layout, true
		}
	}
	return "", false
}

func layoutFromProfile(p *profile.FieldProfile) string {
	for _, v := range p.ValuesOfKind(shape.KindString) {
		if layout, ok := DetectLayout(v.(string)); ok {
			return layout
		}
	}
	return DefaultDateLayout
}
