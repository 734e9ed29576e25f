package partner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCustomer(t *testing.T) {
	t.Run("creates customer with valid inputs", func(t *testing.T) {
		customer, err := NewCustomer("Acme Trading", "orders@acme.example.com", "+86 21 5555 0001")
		require.NoError(t, err)
		require.NotNil(t, customer)

		assert.Equal(t, "Acme Trading", customer.Name)
		assert.Equal(t, "orders@acme.example.com", customer.Email)
		assert.Equal(t, "+86 21 5555 0001", customer.Phone)
		assert.NotEmpty(t, customer.ID)
		assert.Equal(t, 1, customer.GetVersion())
	})

	t.Run("allows empty email and phone", func(t *testing.T) {
		customer, err := NewCustomer("Acme Trading", "", "")
		require.NoError(t, err)
		assert.Empty(t, customer.Email)
		assert.Empty(t, customer.Phone)
	})

	t.Run("fails with empty name", func(t *testing.T) {
		_, err := NewCustomer("", "", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "name cannot be empty")
	})

	t.Run("fails with invalid email", func(t *testing.T) {
		_, err := NewCustomer("Acme Trading", "not-an-email", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid email")
	})

	t.Run("fails with invalid phone", func(t *testing.T) {
		_, err := NewCustomer("Acme Trading", "", "phone!")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid phone number")
	})
}

func TestCustomerUpdate(t *testing.T) {
	t.Run("updates all fields", func(t *testing.T) {
		customer, _ := NewCustomer("Acme Trading", "", "")
		originalVersion := customer.GetVersion()

		err := customer.Update("Acme Trading Co", "sales@acme.example.com", "+86 21 5555 0002")
		require.NoError(t, err)
		assert.Equal(t, "Acme Trading Co", customer.Name)
		assert.Equal(t, "sales@acme.example.com", customer.Email)
		assert.Equal(t, "+86 21 5555 0002", customer.Phone)
		assert.Equal(t, originalVersion+1, customer.GetVersion())
	})

	t.Run("fails with invalid email", func(t *testing.T) {
		customer, _ := NewCustomer("Acme Trading", "", "")
		err := customer.Update("Acme Trading", "bad email", "")
		require.Error(t, err)
	})
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"valid simple", "a@b.co", false},
		{"valid with plus", "orders+van@acme.example.com", false},
		{"missing at", "acme.example.com", true},
		{"missing domain", "orders@", true},
		{"spaces", "orders @acme.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateEmail(tt.email)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
