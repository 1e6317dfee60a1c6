package resolve

import "testing"

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"lowercase", "sweetwater", "SWEETWATER"},
		{"spaces and punctuation", "Lake Bosque Peaking Station", "LAKEBOSQUEPEAKINGSTATION"},
		{"underscores", "SWEET_WN2", "SWEETWN2"},
		{"digits kept", "Sweetwater 2 Wind Farm", "SWEETWATER2WINDFARM"},
		{"empty", "", ""},
		{"only punctuation", "-_.()", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeText(tt.raw); got != tt.want {
				t.Errorf("NormalizeText(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizer_Suffixes(t *testing.T) {
	n := NewNormalizer(DefaultSuffixes)

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"wind suffix", "SWEETWATER_WND", "SWEETWATER"},
		{"solar suffix", "AZURE_SOLAR", "AZURE"},
		// ESS precedes BESS in the suffix order, so a BESS name loses its
		// trailing ESS first and keeps the B
		{"storage suffix", "BRAZORIA_BESS", "BRAZORIAB"},
		{"stacked suffixes", "COMANCHE_ESS_WND", "COMANCHE"},
		{"no suffix", "BOSQUE", "BOSQUE"},
		{"suffix mid-string stays", "WINDMILL", "WINDMILL"},
		{"short name keeps suffix", "BWND", "BWND"},
		{"guard blocks gutting", "OKWND", "OKWND"},
		{"empty", "", ""},
		{"only a suffix token", "SOLAR", "SOLAR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.Normalize(tt.raw); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

// Normalize must be a fixpoint: a second pass never changes the result,
// including for stacked suffixes where the first strip exposes another.
func TestNormalizer_Idempotent(t *testing.T) {
	n := NewNormalizer(DefaultSuffixes)

	inputs := []string{
		"",
		"SOLAR",
		"ESS",
		"SWEETWATER_WND",
		"COMANCHE_ESS_WND",
		"ANCHOR_WND_ESS",
		"Lake Bosque Peaking Station",
		"WINDMILL",
		"abc_bess",
	}

	for _, raw := range inputs {
		once := n.Normalize(raw)
		twice := n.Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: first %q, second %q", raw, once, twice)
		}
	}
}

func TestNormalizer_NoMidStringDeletion(t *testing.T) {
	n := NewNormalizer(DefaultSuffixes)

	// WND occurs mid-string, must survive; only the trailing ESS goes
	if got := n.Normalize("NORTHWNDYARD_ESS"); got != "NORTHWNDYARD" {
		t.Errorf("Normalize = %q, want %q", got, "NORTHWNDYARD")
	}
}
