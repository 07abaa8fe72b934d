package market

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseLocation(t *testing.T) {
	tests := []struct {
		name           string
		raw            string
		wantNormalized string
		wantCity       string
		wantArr        int
		wantKeys       []string
	}{
		{
			name:           "plain city",
			raw:            "Marseille",
			wantNormalized: "marseille",
			wantCity:       "marseille",
			wantKeys:       []string{"marseille"},
		},
		{
			name:           "arrondissement short form",
			raw:            "Paris 11e",
			wantNormalized: "paris 11e",
			wantCity:       "paris",
			wantArr:        11,
			wantKeys:       []string{"paris_11e", "paris"},
		},
		{
			name:           "arrondissement with diacritics",
			raw:            "Paris 11ème",
			wantNormalized: "paris 11eme",
			wantCity:       "paris",
			wantArr:        11,
			wantKeys:       []string{"paris_11e", "paris"},
		},
		{
			name:           "arrondissement word order",
			raw:            "11e arrondissement, Paris",
			wantNormalized: "11e arrondissement paris",
			wantCity:       "paris",
			wantArr:        11,
			wantKeys:       []string{"paris_11e", "paris"},
		},
		{
			name:           "diacritics folded",
			raw:            "  Châteauroux  ",
			wantNormalized: "chateauroux",
			wantCity:       "chateauroux",
			wantKeys:       []string{"chateauroux"},
		},
		{
			name:           "multi word city",
			raw:            "Le Havre",
			wantNormalized: "le havre",
			wantCity:       "le havre",
			wantKeys:       []string{"le_havre"},
		},
		{
			name:           "lyon arrondissement",
			raw:            "Lyon 6e",
			wantNormalized: "lyon 6e",
			wantCity:       "lyon",
			wantArr:        6,
			wantKeys:       []string{"lyon_6e", "lyon"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := ParseLocation(tt.raw)
			if err != nil {
				t.Fatalf("ParseLocation(%q) failed: %v", tt.raw, err)
			}

			if q.Normalized != tt.wantNormalized {
				t.Errorf("Normalized = %q, want %q", q.Normalized, tt.wantNormalized)
			}
			if q.City != tt.wantCity {
				t.Errorf("City = %q, want %q", q.City, tt.wantCity)
			}
			if q.Arrondissement != tt.wantArr {
				t.Errorf("Arrondissement = %d, want %d", q.Arrondissement, tt.wantArr)
			}
			if !reflect.DeepEqual(q.Keys(), tt.wantKeys) {
				t.Errorf("Keys() = %v, want %v", q.Keys(), tt.wantKeys)
			}
		})
	}
}

func TestParseLocationEmpty(t *testing.T) {
	for _, raw := range []string{"", "   ", "\t"} {
		if _, err := ParseLocation(raw); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("ParseLocation(%q): expected ErrInvalidInput, got %v", raw, err)
		}
	}
}

func TestNormalizationIsDeterministic(t *testing.T) {
	a, err := ParseLocation("Paris 11ème")
	if err != nil {
		t.Fatal(err)
	}
	b, err := ParseLocation("paris 11eme")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a.Keys(), b.Keys()) {
		t.Errorf("alias forms should share keys: %v vs %v", a.Keys(), b.Keys())
	}
}
