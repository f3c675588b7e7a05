package domain_test

import (
	"testing"

	"github.com/fortifiedfantasy/fein-server/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyIdentifier(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantKind  domain.IdentifierKind
		wantValue string
		wantErr   bool
	}{
		{
			name:      "plain email",
			raw:       "fan@example.com",
			wantKind:  domain.KindEmail,
			wantValue: "fan@example.com",
		},
		{
			name:      "email is lowercased",
			raw:       "Fan@Example.COM",
			wantKind:  domain.KindEmail,
			wantValue: "fan@example.com",
		},
		{
			name:      "email wins over handle shape",
			raw:       "commish.2024@leagues.example.com",
			wantKind:  domain.KindEmail,
			wantValue: "commish.2024@leagues.example.com",
		},
		{
			name:      "bare ten digit phone assumes nanp",
			raw:       "4155551234",
			wantKind:  domain.KindPhone,
			wantValue: "+14155551234",
		},
		{
			name:      "formatted phone",
			raw:       "(415) 555-1234",
			wantKind:  domain.KindPhone,
			wantValue: "+14155551234",
		},
		{
			name:      "eleven digits with leading one",
			raw:       "1-415-555-1234",
			wantKind:  domain.KindPhone,
			wantValue: "+14155551234",
		},
		{
			name:      "already e164",
			raw:       "+447911123456",
			wantKind:  domain.KindPhone,
			wantValue: "+447911123456",
		},
		{
			name:      "handle",
			raw:       "GridironGuru",
			wantKind:  domain.KindHandle,
			wantValue: "GridironGuru",
		},
		{
			name:      "handle keeps case",
			raw:       "Waiver_Wire.Wizard",
			wantKind:  domain.KindHandle,
			wantValue: "Waiver_Wire.Wizard",
		},
		{
			name:      "handle trims and collapses spaces",
			raw:       "  The   Comeback  Kid ",
			wantKind:  domain.KindHandle,
			wantValue: "The Comeback Kid",
		},
		{
			name:    "empty",
			raw:     "",
			wantErr: true,
		},
		{
			name:    "whitespace only",
			raw:     "   ",
			wantErr: true,
		},
		{
			name:    "too short for a handle",
			raw:     "ab",
			wantErr: true,
		},
		{
			name:    "too long for a handle",
			raw:     "this handle is way past twenty four characters",
			wantErr: true,
		},
		{
			name:    "disallowed characters",
			raw:     "nope!@#$%",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ident, err := domain.ClassifyIdentifier(tt.raw)

			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidIdentifier)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, ident.Kind)
			assert.Equal(t, tt.wantValue, ident.Value)
		})
	}
}

// Classifying an already-normalized value must be a fixed point: the same
// kind and value come back.
func TestClassifyIdentifier_Idempotent(t *testing.T) {
	inputs := []string{
		"Fan@Example.COM",
		"(415) 555-1234",
		"  The   Comeback  Kid ",
		"GridironGuru",
		"+447911123456",
	}

	for _, raw := range inputs {
		first, err := domain.ClassifyIdentifier(raw)
		require.NoError(t, err, raw)

		second, err := domain.ClassifyIdentifier(first.Value)
		require.NoError(t, err, first.Value)
		assert.Equal(t, first, second, raw)
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"4155551234", "+14155551234", true},
		{"14155551234", "+14155551234", true},
		{"+1 (415) 555-1234", "+14155551234", true},
		{"447911123456", "+447911123456", true},
		{"555-1234", "", false}, // too short for any country code
		{"no digits here", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := domain.NormalizePhone(tt.raw)
		assert.Equal(t, tt.ok, ok, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}

func TestPhoneDigits(t *testing.T) {
	assert.Equal(t, "14155551234", domain.PhoneDigits("+1 (415) 555-1234"))
	assert.Equal(t, "", domain.PhoneDigits("abc"))
}

func TestNormalizeHandle(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"GridironGuru", "GridironGuru", true},
		{"  spaced   out  ", "spaced out", true},
		{"a.b", "a.b", true},
		{"ab", "", false},
		{" leading space kept inside ", "", false}, // 25 chars after trim
		{".startsWithDot", ".startsWithDot", true},
		{"ends with space ", "ends with space", true},
	}

	for _, tt := range tests {
		got, ok := domain.NormalizeHandle(tt.raw)
		assert.Equal(t, tt.ok, ok, tt.raw)
		if tt.ok {
			assert.Equal(t, tt.want, got, tt.raw)
		}
	}
}
