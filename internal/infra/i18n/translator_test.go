package i18n

import (
	"testing"
	"testing/fstest"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"locales/en.yaml": &fstest.MapFile{Data: []byte(
			"balance: \"Your balance: %d credits.\"\nshop_empty: \"The shop is empty right now.\"\n",
		)},
	}
}

func TestTranslator_T(t *testing.T) {
	t.Parallel()

	tr, err := NewTranslator(testFS(), "en")
	if err != nil {
		t.Fatalf("NewTranslator: %v", err)
	}

	if got := tr.T("shop_empty"); got != "The shop is empty right now." {
		t.Fatalf("plain template: %q", got)
	}
	if got := tr.T("balance", 42); got != "Your balance: 42 credits." {
		t.Fatalf("formatted template: %q", got)
	}
	// Unknown keys echo back.
	if got := tr.T("missing_key"); got != "missing_key" {
		t.Fatalf("unknown key: %q", got)
	}
}

func TestTranslator_MissingLocale(t *testing.T) {
	t.Parallel()

	if _, err := NewTranslator(testFS(), "de"); err == nil {
		t.Fatal("expected error for missing locale file")
	}
}

func TestEmbeddedLocaleLoads(t *testing.T) {
	t.Parallel()

	tr, err := NewTranslator(LocalesFS, "en")
	if err != nil {
		t.Fatalf("embedded locale failed to load: %v", err)
	}
	// Every rejection the coordinator can produce needs a template.
	for _, key := range []string{
		"error_product_not_found",
		"error_out_of_stock",
		"error_insufficient_funds",
		"error_generic",
	} {
		if got := tr.T(key); got == key {
			t.Errorf("missing template for %q", key)
		}
	}
}
