package interpos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkaraca/vpos-gateway/internal/domain"
)

func TestCurrencyTableInjective(t *testing.T) {
	seen := map[string]string{}
	for alpha, numeric := range currencies {
		if prev, dup := seen[numeric]; dup {
			t.Fatalf("currency code %s maps from both %s and %s", numeric, prev, alpha)
		}
		seen[numeric] = alpha
	}
}

func TestCurrencyRoundTrip(t *testing.T) {
	for alpha := range currencies {
		numeric, err := MapCurrency(alpha)
		require.NoError(t, err)

		back := reverseCurrency(numeric)
		require.NotNil(t, back, "currency %s", alpha)
		assert.Equal(t, alpha, *back)
	}

	assert.Nil(t, reverseCurrency("000"))
}

func TestMapSecureType(t *testing.T) {
	token, err := mapSecureType(domain.Model3DHost)
	require.NoError(t, err)
	assert.Equal(t, "3DHost", token)

	_, err = mapSecureType("telepathy")
	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeMappingError))
}

func TestMapperScenarioTenLiraNoCard(t *testing.T) {
	var mapper RequestDataMapper
	order := &domain.Order{
		ID:       "1000",
		Amount:   10,
		Currency: "TRY",
	}

	data, err := mapper.NonSecurePayment(testAccount(), order, domain.TxPay, nil)
	require.NoError(t, err)

	assert.Equal(t, "1000", data.Get("OrderId"))
	assert.Equal(t, "10.00", data.Get("PurchAmount"))
	assert.Equal(t, "949", data.Get("Currency"))
	assert.Equal(t, "0", data.Get("InstallmentCount"))
	assert.False(t, data.Has("Pan"))
}
