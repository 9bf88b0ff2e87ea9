// Package intent classifies free-text customer messages into a fixed set of
// intents using deterministic substring matching.
//
// Evaluation order is significant: an input may lexically satisfy triggers
// for more than one intent, and the earlier-listed intent always wins.
package intent

import (
	"strings"

	"github.com/sharicrepas/sharibot/internal/models"
)

// Trigger keyword lists, one per intent, in evaluation order. The lists
// include common misspellings and accent variants on purpose.
var (
	greetingTriggers = []string{"hola", "hello", "hi", "buenas", "buen", "saludos", "ola", "/start"}
	menuTriggers     = []string{"menu", "menú", "carta", "comida", "que venden", "qué venden", "catalogo", "catálogo"}
	orderTriggers    = []string{"pedido", "pedir", "ordenar", "orden", "quiero", "me das", "comprar"}
	locationTriggers = []string{"ubicacion", "ubicación", "direccion", "dirección", "donde", "dónde", "maps", "mapa"}
	scheduleTriggers = []string{"horario", "horarios", "cuando", "cuándo", "abierto", "cerrado", "abren", "cierran"}
	contactTriggers  = []string{"contacto", "telefono", "teléfono", "numero", "número", "facebook", "redes"}
	helpTriggers     = []string{"ayuda", "help", "comandos", "opciones", "que puedo", "qué puedo"}
	thanksTriggers   = []string{"gracias", "thank"}
)

// Classify maps free text to exactly one intent. Input is trimmed and
// lower-cased before matching; empty input yields IntentUnknown.
func Classify(text string) models.Intent {
	normalized := strings.ToLower(strings.TrimSpace(text))

	switch {
	case containsAny(normalized, greetingTriggers):
		return models.IntentGreeting
	case containsAny(normalized, menuTriggers):
		return models.IntentMenuRequest
	case containsAny(normalized, orderTriggers):
		return models.IntentOrderRequest
	case containsAny(normalized, locationTriggers):
		return models.IntentLocationRequest
	case containsAny(normalized, scheduleTriggers):
		return models.IntentScheduleRequest
	case containsAny(normalized, contactTriggers):
		return models.IntentContactRequest
	case containsAny(normalized, helpTriggers):
		return models.IntentHelpRequest
	case IsMenuSelection(text):
		return models.IntentMenuSelection
	case containsAny(normalized, thanksTriggers):
		return models.IntentThanks
	default:
		return models.IntentUnknown
	}
}

// IsMenuSelection reports whether the text is a bare "1", "2" or "3" choice.
// Only exact matches after trimming count; "12" or "opción 1" do not.
func IsMenuSelection(text string) bool {
	switch strings.TrimSpace(text) {
	case "1", "2", "3":
		return true
	default:
		return false
	}
}

func containsAny(text string, triggers []string) bool {
	for _, trigger := range triggers {
		if strings.Contains(text, trigger) {
			return true
		}
	}
	return false
}
