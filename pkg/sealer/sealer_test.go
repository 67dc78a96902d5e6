package sealer

import (
	"errors"
	"slices"
	"testing"
)

func TestSealOpen(t *testing.T) {
	s, err := New("test-secret")
	if err != nil {
		t.Fatal(err)
	}

	token, err := s.Seal("user-uploads", "cust-1/report.pdf", "1700000000")
	if err != nil {
		t.Fatal(err)
	}

	fields, err := s.Open(token, 3)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !slices.Equal(fields, []string{"user-uploads", "cust-1/report.pdf", "1700000000"}) {
		t.Errorf("fields = %v", fields)
	}

	if _, err := s.Open(token, 2); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("wrong arity should fail, got %v", err)
	}
}

func TestOpen_Rejects(t *testing.T) {
	s, _ := New("test-secret")
	other, _ := New("other-secret")
	token, _ := s.Seal("a", "b")
	tampered := []byte(token)
	if tampered[20] == 'A' {
		tampered[20] = 'B'
	} else {
		tampered[20] = 'A'
	}

	tests := []struct {
		name  string
		token string
		s     *Sealer
	}{
		{"foreign key", token, other},
		{"not base64", "%%%", s},
		{"too short", "abc", s},
		{"tampered", string(tampered), s},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.s.Open(tt.token, 2); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestNew_EmptySecret(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Error("expected error for empty secret")
	}
}
