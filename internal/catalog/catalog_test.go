package catalog

import (
	"reflect"
	"testing"
)

func TestExtractSingleProduct(t *testing.T) {
	got := Extract("Quiero una crepa de nutella por favor")

	if len(got.Products) == 0 {
		t.Fatal("Expected at least one product match")
	}
	if got.Products[0] != "crepa de nutella" {
		t.Errorf("Expected first product %q, got %q", "crepa de nutella", got.Products[0])
	}
	if !reflect.DeepEqual(got.Categories, []string{"crepas_dulces"}) {
		t.Errorf("Expected categories [crepas_dulces], got %v", got.Categories)
	}
}

func TestExtractIsCaseInsensitive(t *testing.T) {
	lower := Extract("un waffle de fresa")
	upper := Extract("UN WAFFLE DE FRESA")

	if !reflect.DeepEqual(lower, upper) {
		t.Errorf("Extraction should be case-insensitive: %v vs %v", lower, upper)
	}
}

// Substring matching is deliberate: "crepa de nutella" also registers
// "nutella", and "crepa de queso" registers the bare "queso" alias.
func TestExtractOverlappingAliases(t *testing.T) {
	got := Extract("crepa de queso")

	found := map[string]bool{}
	for _, p := range got.Products {
		found[p] = true
	}
	if !found["crepa de queso"] || !found["queso"] {
		t.Errorf("Expected both overlapping aliases to register, got %v", got.Products)
	}
}

func TestExtractMultipleCategories(t *testing.T) {
	got := Extract("una hamburguesa con queso, papas y un cafe")

	want := map[string]bool{
		"crepas_saladas": true, // bare "queso" alias
		"bebidas":        true,
		"hamburguesas":   true,
		"antojitos":      true,
	}
	if len(got.Categories) != len(want) {
		t.Fatalf("Expected %d categories, got %v", len(want), got.Categories)
	}
	for _, c := range got.Categories {
		if !want[c] {
			t.Errorf("Unexpected category %q in %v", c, got.Categories)
		}
	}
}

func TestExtractCategoriesDeduplicated(t *testing.T) {
	got := Extract("crepa de nutella y crepa de cajeta")

	count := 0
	for _, c := range got.Categories {
		if c == "crepas_dulces" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("Expected crepas_dulces to appear once, got %d times in %v", count, got.Categories)
	}
	if len(got.Products) < 2 {
		t.Errorf("Expected products from both phrases, got %v", got.Products)
	}
}

func TestExtractNoMatches(t *testing.T) {
	got := Extract("xyzzy plugh")

	if len(got.Products) != 0 {
		t.Errorf("Expected no products, got %v", got.Products)
	}
	if len(got.Categories) != 0 {
		t.Errorf("Expected no categories, got %v", got.Categories)
	}
}

func TestExtractIsDeterministic(t *testing.T) {
	text := "charola familiar con boneless, nachos y dos frappes"
	first := Extract(text)
	for i := 0; i < 10; i++ {
		if got := Extract(text); !reflect.DeepEqual(got, first) {
			t.Fatalf("Extraction order changed between runs: %v vs %v", got, first)
		}
	}
}

func TestCategoriesOrder(t *testing.T) {
	want := []string{
		CategoryCrepasDulces, CategoryCrepasSaladas, CategoryWaffles,
		CategoryBebidas, CategoryHamburguesas, CategoryAntojitos, CategoryCharolas,
	}
	if got := Categories(); !reflect.DeepEqual(got, want) {
		t.Errorf("Categories() = %v, want %v", got, want)
	}
}
