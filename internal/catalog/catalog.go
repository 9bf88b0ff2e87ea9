// Package catalog extracts known product and category signals from free-text
// order descriptions.
//
// Matching is pure substring containment on the lower-cased text, with no
// tokenization or word-boundary checks: a short alias that appears inside a
// longer one (e.g. "queso" inside "crepa de queso") registers independently.
// That overlap is intentional and relied upon by the analytics counters.
package catalog

import "strings"

// Category names as they appear in analytics records.
const (
	CategoryCrepasDulces  = "crepas_dulces"
	CategoryCrepasSaladas = "crepas_saladas"
	CategoryWaffles       = "waffles"
	CategoryBebidas       = "bebidas"
	CategoryHamburguesas  = "hamburguesas"
	CategoryAntojitos     = "antojitos"
	CategoryCharolas      = "charolas"
)

type categoryEntry struct {
	name    string
	aliases []string
}

// The catalog is ordered: extraction walks categories and aliases in this
// exact sequence so results are deterministic. Alias lists include common
// misspellings and accent-free variants seen in real orders.
var catalogEntries = []categoryEntry{
	{CategoryCrepasDulces, []string{
		"crepa de nutella", "crepa nutella", "nutella",
		"crepa de cajeta", "crepa cajeta", "cajeta",
		"crepa de lechera", "crepa lechera", "lechera",
		"crepa de mermelada", "crepa mermelada", "mermelada",
		"crepa de chocolate", "crepa chocolate", "chocolate",
		"crepa de fresa", "crepa fresa", "fresas",
		"crepa de plátano", "crepa platano", "plátano", "platano",
		"crepa mixta", "crepa combinada",
	}},
	{CategoryCrepasSaladas, []string{
		"crepa de jamón", "crepa jamon", "jamón", "jamon",
		"crepa de queso", "crepa queso", "queso",
		"crepa de pollo", "crepa pollo", "pollo",
		"crepa hawaiana", "hawaiana", "piña",
		"crepa de champiñones", "champiñones", "champinones",
		"crepa de espinacas", "espinacas",
	}},
	{CategoryWaffles, []string{
		"waffle", "wafle", "wafel",
		"waffle de nutella", "waffle nutella",
		"waffle de fresa", "waffle fresa",
		"waffle de chocolate", "waffle chocolate",
		"waffle simple", "waffle sencillo",
	}},
	{CategoryBebidas, []string{
		"café", "cafe", "coffee",
		"cappuccino", "capuchino",
		"latte", "late",
		"americano",
		"frappe", "frappé", "frape",
		"chocolate caliente", "chocolate",
		"té", "te", "tea",
		"agua", "refresco", "coca", "pepsi",
		"jugo", "zumo", "naranja", "manzana",
	}},
	{CategoryHamburguesas, []string{
		"hamburguesa", "burger", "hamburgesa",
		"hamburguesa sencilla", "hamburguesa simple",
		"hamburguesa hawaiana",
		"hamburguesa con queso", "cheeseburger",
		"hot dog", "hotdog", "perro caliente",
		"hot dog sencillo", "hot dog especial",
	}},
	{CategoryAntojitos, []string{
		"boneless", "boneles", "alitas",
		"nachos", "nacho",
		"papas", "papas fritas", "french fries",
		"aros de cebolla", "aros",
		"banderillas", "banderilla", "coreanas",
		"quesadilla", "quesadillas",
	}},
	{CategoryCharolas, []string{
		"charola", "charola especial",
		"charola familiar", "charola grande",
		"combo", "paquete", "promoción",
	}},
}

// Extraction is the result of scanning one order text. Products preserves
// duplicates and match order; Categories is deduplicated in first-hit order.
type Extraction struct {
	Products   []string `json:"products"`
	Categories []string `json:"categories"`
}

// Extract scans the text for every registered alias.
func Extract(text string) Extraction {
	lower := strings.ToLower(text)
	result := Extraction{Products: []string{}, Categories: []string{}}
	seen := make(map[string]bool, len(catalogEntries))

	for _, entry := range catalogEntries {
		for _, alias := range entry.aliases {
			if strings.Contains(lower, alias) {
				result.Products = append(result.Products, alias)
				if !seen[entry.name] {
					seen[entry.name] = true
					result.Categories = append(result.Categories, entry.name)
				}
			}
		}
	}
	return result
}

// Categories returns the registered category names in catalog order.
func Categories() []string {
	names := make([]string, 0, len(catalogEntries))
	for _, entry := range catalogEntries {
		names = append(names, entry.name)
	}
	return names
}
