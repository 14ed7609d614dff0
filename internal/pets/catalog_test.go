package pets

import (
	"strings"
	"testing"
)

func TestDefaultCatalog(t *testing.T) {
	catalog, err := LoadCatalog("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dragon, ok := catalog.Find(" Dragon ")
	if !ok {
		t.Fatalf("expected the dragon in the default catalog")
	}
	if dragon.Rarity != RARITY_LEGENDARY || dragon.Attack != 12 || dragon.Defense != 8 {
		t.Fatalf("unexpected dragon %+v", dragon)
	}
	if _, ok := catalog.Find("hamster"); ok {
		t.Fatalf("did not expect a hamster")
	}
}

func TestParseCatalogValidation(t *testing.T) {
	cases := map[string]string{
		"empty":     "pets: []",
		"no name":   "pets:\n  - rarity: common\n",
		"duplicate": "pets:\n  - name: a\n    rarity: common\n  - name: A\n    rarity: rare\n",
		"rarity":    "pets:\n  - name: a\n    rarity: mythic\n",
		"negative":  "pets:\n  - name: a\n    rarity: common\n    price: -1\n",
	}
	for name, data := range cases {
		if _, err := ParseCatalog([]byte(data)); err == nil {
			t.Fatalf("%s: expected an error", name)
		}
	}
	if _, err := LoadCatalog("/does/not/exist.yaml"); err == nil || !strings.Contains(err.Error(), "failed to read") {
		t.Fatalf("expected a read error, got %v", err)
	}
}
