package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkaraca/vpos-gateway/internal/domain"
)

func TestDecodeXMLUnwrapsRoot(t *testing.T) {
	body := []byte(`<VPosTransactionResponseContract>
		<ResponseCode>00</ResponseCode>
		<ProvisionNumber>050312</ProvisionNumber>
	</VPosTransactionResponseContract>`)

	decoded, err := Decode(body)
	require.NoError(t, err)

	m, ok := decoded.(DecodedXML)
	require.True(t, ok)
	assert.Equal(t, "00", StrOr(m, "ResponseCode", ""))
	assert.Equal(t, "050312", StrOr(m, "ProvisionNumber", ""))
}

func TestDecodeXMLNested(t *testing.T) {
	body := []byte(`<Response><VPosMessage><HashData>abc</HashData></VPosMessage><ResponseCode>00</ResponseCode></Response>`)

	m, err := DecodeXML(body)
	require.NoError(t, err)

	message := Sub(m, "VPosMessage")
	require.NotNil(t, message)
	assert.Equal(t, "abc", StrOr(message, "HashData", ""))
}

func TestDecodeXMLLatin1(t *testing.T) {
	// \xd6 is 'Ö' in ISO-8859-1 and invalid UTF-8.
	body := []byte("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>" +
		"<VPosTransactionResponseContract><ResponseMessage>\xd6deme Onay</ResponseMessage></VPosTransactionResponseContract>")

	m, err := DecodeXML(body)
	require.NoError(t, err)
	assert.Equal(t, "Ödeme Onay", StrOr(m, "ResponseMessage", ""))
}

func TestDecodeHTMLForm(t *testing.T) {
	body := []byte(`<html><head></head><body>
		<form method="POST" action="https://acs.bank.example/challenge">
			<input type="hidden" name="MD" value="md-token"/>
			<input type="hidden" name="PaReq" value="pareq-blob"/>
			<input type="hidden" name="TermUrl" value="https://merchant.example/ok"/>
			<input type="submit" name="submit" value="Continue"/>
		</form>
	</body></html>`)

	decoded, err := Decode(body)
	require.NoError(t, err)

	form, ok := decoded.(DecodedForm)
	require.True(t, ok)
	assert.Equal(t, "https://acs.bank.example/challenge", form.Gateway)
	assert.Equal(t, "md-token", form.Inputs["MD"])
	assert.Equal(t, "pareq-blob", form.Inputs["PaReq"])

	// the submit button is not a field
	_, hasSubmit := form.Inputs["submit"]
	assert.False(t, hasSubmit)
}

func TestDecodeGarbageBody(t *testing.T) {
	_, err := Decode([]byte("Internal Server Error"))
	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeTransportError))
	assert.Contains(t, err.Error(), "Internal Server Error")
}

func TestDecodeHTMLWithoutForm(t *testing.T) {
	_, err := Decode([]byte("<html><body><p>session expired</p></body></html>"))
	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeTransportError))
}

func TestFormSubmissionFieldsSorted(t *testing.T) {
	form := FormSubmission{
		Gateway: "https://bank.example/3d",
		Inputs: map[string]string{
			"Rnd":      "x",
			"Hash":     "y",
			"ShopCode": "z",
		},
	}

	assert.Equal(t, []string{"Hash", "Rnd", "ShopCode"}, form.Fields())

	values := form.Values()
	assert.Equal(t, "x", values.Get("Rnd"))
	assert.Equal(t, "y", values.Get("Hash"))
}
