package messaging

import (
	"context"
	"testing"

	"github.com/sharicrepas/sharibot/internal/models"
	"github.com/sharicrepas/sharibot/internal/whatsapp"
)

// Ensure WhatsAppService implements Service interface
func TestWhatsAppService_ImplementsService(t *testing.T) {
	var _ Service = (*WhatsAppService)(nil)
}

// Test SendMessage canonicalizes the recipient and emits a sent receipt
func TestWhatsAppService_SendMessage_Receipt(t *testing.T) {
	mockClient := whatsapp.NewMockClient()
	svc := NewWhatsAppService(mockClient)
	ctx := context.Background()
	if err := svc.SendMessage(ctx, "+526861234567", "hola"); err != nil {
		t.Fatalf("SendMessage returned error: %v", err)
	}
	select {
	case receipt := <-svc.Receipts():
		if receipt.To != "526861234567" {
			t.Errorf("expected canonicalized receipt.To, got %s", receipt.To)
		}
		if receipt.Status != models.StatusTypeSent {
			t.Errorf("expected receipt.Status %s, got %s", models.StatusTypeSent, receipt.Status)
		}
	default:
		t.Fatal("expected receipt, got none")
	}
}

func TestWhatsAppService_SendMessage_RejectsInvalidRecipient(t *testing.T) {
	svc := NewWhatsAppService(whatsapp.NewMockClient())
	if err := svc.SendMessage(context.Background(), "no-digits", "hola"); err == nil {
		t.Error("expected validation error for recipient without digits")
	}
	if err := svc.SendMessage(context.Background(), "123", "hola"); err == nil {
		t.Error("expected validation error for too-short recipient")
	}
}

// Test Start and Stop do not error and close channels
func TestWhatsAppService_StartStop(t *testing.T) {
	mockClient := whatsapp.NewMockClient()
	svc := NewWhatsAppService(mockClient)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if err := svc.Stop(); err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}
	receipt, ok := <-svc.Receipts()
	if ok {
		t.Errorf("expected receipts channel closed, got value %v", receipt)
	}
	response, ok := <-svc.Responses()
	if ok {
		t.Errorf("expected responses channel closed, got value %v", response)
	}
}

func TestCanonicalizePhone(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"bare digits", "6861234567", "6861234567", false},
		{"plus prefix", "+526861234567", "526861234567", false},
		{"twilio whatsapp prefix", "whatsapp:+526861234567", "526861234567", false},
		{"formatted", "(686) 123-4567", "6861234567", false},
		{"empty", "", "", true},
		{"no digits", "abc", "", true},
		{"too short", "12345", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := canonicalizePhone(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("canonicalizePhone(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("canonicalizePhone(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
