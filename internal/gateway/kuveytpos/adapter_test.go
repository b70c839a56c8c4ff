package kuveytpos

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkaraca/vpos-gateway/internal/domain"
	"github.com/tkaraca/vpos-gateway/internal/gateway"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestAdapter(apiURL, gateway3DURL string) *Adapter {
	return New(Config{APIURL: apiURL, Gateway3DURL: gateway3DURL},
		gateway.NewClient(5*time.Second, testLogger()), testLogger())
}

func callbackValues(hashData string) url.Values {
	callbackXML := fmt.Sprintf(`<VPosTransactionResponseContract>
		<ResponseCode>00</ResponseCode>
		<MD>md-session-token</MD>
		<VPosMessage>
			<HashData>%s</HashData>
			<MerchantOrderId>order-123</MerchantOrderId>
			<TransactionType>Sale</TransactionType>
			<InstallmentCount>0</InstallmentCount>
			<Amount>1001</Amount>
			<DisplayAmount>1001</DisplayAmount>
			<CurrencyCode>0949</CurrencyCode>
			<TransactionSecurity>3</TransactionSecurity>
		</VPosMessage>
	</VPosTransactionResponseContract>`, hashData)

	return url.Values{"AuthenticationResponse": {url.QueryEscape(callbackXML)}}
}

func TestServerOperationsUnsupported(t *testing.T) {
	adapter := newTestAdapter("http://unused", "http://unused")
	ctx := context.Background()

	_, err := adapter.Pay(ctx, testAccount(), testOrder(), testCard())
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeUnsupportedOperation))

	_, err = adapter.PostAuth(ctx, testAccount(), testOrder())
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeUnsupportedOperation))

	_, err = adapter.Cancel(ctx, testAccount(), testOrder())
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeUnsupportedOperation))

	_, err = adapter.Refund(ctx, testAccount(), testOrder())
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeUnsupportedOperation))

	_, err = adapter.Status(ctx, testAccount(), testOrder())
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeUnsupportedOperation))

	_, err = adapter.History(ctx, testAccount(), testOrder())
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeUnsupportedOperation))
}

func TestThreeDFormScrapesBankPage(t *testing.T) {
	var gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		w.Write([]byte(`<html><body>
			<form method="post" action="https://acs.bank.example/challenge">
				<input type="hidden" name="PaReq" value="pareq-blob"/>
				<input type="hidden" name="MD" value="md-session-token"/>
				<input type="submit" name="submit" value="Devam"/>
			</form>
		</body></html>`))
	}))
	defer server.Close()

	adapter := newTestAdapter("http://unused", server.URL)

	form, err := adapter.ThreeDForm(context.Background(), testAccount(), testOrder(), domain.TxPay, testCard())
	require.NoError(t, err)

	assert.Equal(t, "text/xml; charset=ISO-8859-1", gotContentType)
	assert.Equal(t, "https://acs.bank.example/challenge", form.Gateway)
	assert.Equal(t, "pareq-blob", form.Inputs["PaReq"])
	assert.Equal(t, "md-session-token", form.Inputs["MD"])
	_, hasSubmit := form.Inputs["submit"]
	assert.False(t, hasSubmit)
}

func TestThreeDFormXMLReplyIsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<VPosTransactionResponseContract><ResponseCode>ApiUserNotDefined</ResponseCode></VPosTransactionResponseContract>`))
	}))
	defer server.Close()

	adapter := newTestAdapter("http://unused", server.URL)

	_, err := adapter.ThreeDForm(context.Background(), testAccount(), testOrder(), domain.TxPay, testCard())
	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeTransportError))
}

func TestComplete3DAuthorized(t *testing.T) {
	var provisions atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		provisions.Add(1)
		w.Write([]byte(`<VPosTransactionResponseContract>
			<ResponseCode>00</ResponseCode>
			<ResponseMessage>OK</ResponseMessage>
			<ProvisionNumber>050312</ProvisionNumber>
			<MerchantOrderId>order-123</MerchantOrderId>
			<RRN>904115005554</RRN>
			<VPosMessage>
				<Amount>1001</Amount>
				<CurrencyCode>0949</CurrencyCode>
				<CardNumber>4025********6032</CardNumber>
			</VPosMessage>
		</VPosTransactionResponseContract>`))
	}))
	defer server.Close()

	adapter := newTestAdapter(server.URL, "http://unused")

	callback := callbackValues(EnrollmentHash(testAccount(), testOrder()))
	response, err := adapter.Complete3D(context.Background(), testAccount(), testOrder(), callback)
	require.NoError(t, err)

	assert.True(t, response.Approved())
	require.NotNil(t, response.AuthCode)
	assert.Equal(t, "050312", *response.AuthCode)
	require.NotNil(t, response.OrderID)
	assert.Equal(t, "order-123", *response.OrderID)
	require.NotNil(t, response.Amount)
	assert.InDelta(t, 10.01, *response.Amount, 0.0001)
	require.NotNil(t, response.Currency)
	assert.Equal(t, "TRY", *response.Currency)
	assert.Equal(t, int32(1), provisions.Load())
}

func TestComplete3DForgedCallbackNeverProvisions(t *testing.T) {
	var provisions atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		provisions.Add(1)
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	adapter := newTestAdapter(server.URL, "http://unused")

	callback := callbackValues("forged-digest")
	_, err := adapter.Complete3D(context.Background(), testAccount(), testOrder(), callback)
	require.Error(t, err)

	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeIntegrityError))
	assert.Equal(t, int32(0), provisions.Load())
}

func TestComplete3DBankDeclineSkipsProvision(t *testing.T) {
	var provisions atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		provisions.Add(1)
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	adapter := newTestAdapter(server.URL, "http://unused")

	declineXML := fmt.Sprintf(`<VPosTransactionResponseContract>
		<ResponseCode>MPIAuthenticationStatusN</ResponseCode>
		<ResponseMessage>Dogrulama basarisiz</ResponseMessage>
		<VPosMessage>
			<HashData>%s</HashData>
			<MerchantOrderId>order-123</MerchantOrderId>
		</VPosMessage>
	</VPosTransactionResponseContract>`, EnrollmentHash(testAccount(), testOrder()))
	callback := url.Values{"AuthenticationResponse": {url.QueryEscape(declineXML)}}

	response, err := adapter.Complete3D(context.Background(), testAccount(), testOrder(), callback)
	require.NoError(t, err)

	assert.False(t, response.Approved())
	require.NotNil(t, response.ErrorCode)
	assert.Equal(t, "MPIAuthenticationStatusN", *response.ErrorCode)
	require.NotNil(t, response.OrderID)
	assert.Equal(t, "order-123", *response.OrderID)
	assert.Equal(t, int32(0), provisions.Load())
}

func TestComplete3DMissingAuthenticationResponse(t *testing.T) {
	adapter := newTestAdapter("http://unused", "http://unused")

	_, err := adapter.Complete3D(context.Background(), testAccount(), testOrder(), url.Values{})
	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeTransportError))
}
