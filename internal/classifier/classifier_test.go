package classifier

import (
	"reflect"
	"testing"

	"github.com/IshaanNene/BeritaKepri/internal/taxonomy"
)

func newTaxonomy(entries ...any) *taxonomy.Taxonomy {
	tax := taxonomy.New()
	for i := 0; i+1 < len(entries); i += 2 {
		tax.Add(entries[i].(string), entries[i+1].([]string))
	}
	return tax
}

func TestMultiLabelIndustriScenario(t *testing.T) {
	tax := newTaxonomy(
		"Industri", []string{"makanan", "minuman"},
		"Pertanian", []string{"padi", "sawit"},
	)
	c := NewMultiLabel(3, "", TieOrder)

	got := c.Classify("Industri makanan berkembang pesat di kota", tax)
	if !reflect.DeepEqual(got, []string{"Industri"}) {
		t.Errorf("Classify = %v, want [Industri]", got)
	}

	scores := ScoreAll("Industri makanan berkembang pesat di kota", tax, WordMatcher{})
	if scores[0].Hits != 1 || scores[1].Hits != 0 {
		t.Errorf("unexpected scores %+v", scores)
	}
}

func TestMultiLabelWholeWord(t *testing.T) {
	tax := newTaxonomy("Pertambangan", []string{"emas"})
	c := NewMultiLabel(3, "", TieOrder)

	if got := c.Classify("pengemasan barang", tax); !reflect.DeepEqual(got, []string{DefaultSentinel}) {
		t.Errorf("embedded keyword must not match, got %v", got)
	}
	if got := c.Classify("Harga EMAS naik, tambang emas ramai.", tax); !reflect.DeepEqual(got, []string{"Pertambangan"}) {
		t.Errorf("whole word should match, got %v", got)
	}
}

func TestMultiLabelSentinel(t *testing.T) {
	c := NewMultiLabel(3, "Lainnya", TieOrder)
	tax := newTaxonomy("Industri", []string{"pabrik"})

	tests := []struct {
		name string
		body string
		tax  *taxonomy.Taxonomy
	}{
		{"empty body", "", tax},
		{"blank body", "   \n", tax},
		{"empty taxonomy", "pabrik baru dibuka", taxonomy.New()},
		{"nil taxonomy", "pabrik baru dibuka", nil},
		{"no match", "cuaca cerah hari ini", tax},
	}
	for _, tt := range tests {
		got := c.Classify(tt.body, tt.tax)
		if !reflect.DeepEqual(got, []string{"Lainnya"}) {
			t.Errorf("%s: got %v, want [Lainnya]", tt.name, got)
		}
	}
}

func TestMultiLabelTopThree(t *testing.T) {
	tax := newTaxonomy(
		"E", []string{"satu"},
		"D", []string{"satu", "dua"},
		"C", []string{"satu", "dua", "tiga"},
		"B", []string{"satu", "dua", "tiga", "empat"},
		"A", []string{"satu", "dua", "tiga", "empat", "lima"},
	)
	c := NewMultiLabel(3, "", TieOrder)

	body := "satu dua tiga empat lima"
	got := c.Classify(body, tax)
	if !reflect.DeepEqual(got, []string{"A", "B", "C"}) {
		t.Errorf("Classify = %v, want [A B C]", got)
	}
	if again := c.Classify(body, tax); !reflect.DeepEqual(again, got) {
		t.Errorf("classification not idempotent: %v then %v", got, again)
	}
}

func TestMultiLabelTieBreak(t *testing.T) {
	tax := newTaxonomy(
		"Perdagangan", []string{"pasar"},
		"Angkutan", []string{"kapal"},
		"Industri", []string{"pabrik", "pasar"},
	)
	body := "kapal dari pabrik tiba di pasar"

	byOrder := NewMultiLabel(3, "", TieOrder).Classify(body, tax)
	if !reflect.DeepEqual(byOrder, []string{"Industri", "Perdagangan", "Angkutan"}) {
		t.Errorf("order tie-break = %v", byOrder)
	}

	byAlpha := NewMultiLabel(3, "", TieAlpha).Classify(body, tax)
	if !reflect.DeepEqual(byAlpha, []string{"Industri", "Angkutan", "Perdagangan"}) {
		t.Errorf("alpha tie-break = %v", byAlpha)
	}
}

func TestSingleLabel(t *testing.T) {
	tax := newTaxonomy(
		"Konsumsi", []string{"belanja", "rumah"},
		"Investasi", []string{"modal", "belanja"},
	)

	word := NewSingleLabel("", MatchWord)
	if got := word.Classify("Warga belanja kebutuhan rumah", tax); got != "Konsumsi" {
		t.Errorf("expected Konsumsi, got %q", got)
	}
	if got := word.Classify("belanja", tax); got != "Konsumsi" {
		t.Errorf("first category must win ties, got %q", got)
	}
	if got := word.Classify("cuaca cerah", tax); got != DefaultSentinel {
		t.Errorf("expected sentinel, got %q", got)
	}
	if got := word.Classify("", tax); got != DefaultSentinel {
		t.Errorf("expected sentinel for empty body, got %q", got)
	}
}

func TestSingleLabelSubstringDiffersFromWord(t *testing.T) {
	tax := newTaxonomy("Pertambangan", []string{"emas"})
	body := "pengemasan barang ekspor"

	if got := NewSingleLabel("", MatchSubstring).Classify(body, tax); got != "Pertambangan" {
		t.Errorf("substring matching should hit embedded keyword, got %q", got)
	}
	if got := NewSingleLabel("", MatchWord).Classify(body, tax); got != DefaultSentinel {
		t.Errorf("word matching should not hit embedded keyword, got %q", got)
	}
}
