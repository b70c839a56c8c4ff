package gateway

import (
	"bytes"
	"strings"

	"github.com/clbanning/mxj/v2"
	"golang.org/x/net/html"

	"golang.org/x/net/html/charset"

	"github.com/tkaraca/vpos-gateway/internal/domain"
)

// The banks reply in ISO-8859-1; mxj needs a charset reader to decode
// anything that is not UTF-8.
func init() {
	mxj.XmlCharsetReader = charset.NewReaderLabel
}

// Decoded is the tagged result of decoding a gateway response body: either a
// well-formed XML document flattened to a map, or an HTML page carrying an
// auto-submit form. Anything else is a transport-level failure surfaced with
// the raw body as context.
type Decoded interface {
	isDecoded()
}

// DecodedXML is an XML response with the document root unwrapped, so field
// lookups address the bank's message elements directly.
type DecodedXML map[string]any

func (DecodedXML) isDecoded() {}

// DecodedForm is an HTML response that contained an auto-submit form, as some
// gateways return for the 3-D enrollment step.
type DecodedForm FormSubmission

func (DecodedForm) isDecoded() {}

// Decode classifies a response body. HTML is recognized first: the banks'
// redirect pages are valid XHTML and would otherwise parse as XML, and an
// HTML error page without a form must fail instead of masquerading as a
// bank message. An HTML page with a form is not an error but the redirect
// artifact of the handshake.
func Decode(body []byte) (Decoded, error) {
	if looksLikeHTML(body) {
		if form, ok := decodeHTMLForm(body); ok {
			return DecodedForm(*form), nil
		}
		return nil, domain.NewUndecodableResponseError(strings.TrimSpace(string(body)))
	}

	if m, err := DecodeXML(body); err == nil {
		return m, nil
	}

	if form, ok := decodeHTMLForm(body); ok {
		return DecodedForm(*form), nil
	}

	return nil, domain.NewUndecodableResponseError(strings.TrimSpace(string(body)))
}

func looksLikeHTML(body []byte) bool {
	lower := bytes.ToLower(body)
	return bytes.Contains(lower, []byte("<html")) ||
		bytes.Contains(lower, []byte("<!doctype html"))
}

// DecodeXML parses an XML document into a map and drops the root element, the
// way the original bank messages are addressed (children of the envelope).
func DecodeXML(body []byte) (DecodedXML, error) {
	m, err := mxj.NewMapXml(body)
	if err != nil {
		return nil, err
	}

	out := map[string]any(m)
	if len(out) == 1 {
		for _, v := range out {
			if inner, ok := v.(map[string]any); ok {
				return DecodedXML(inner), nil
			}
		}
	}
	return DecodedXML(out), nil
}

// decodeHTMLForm extracts the first <form> of an HTML document: its action
// becomes the gateway URL (the bank substitutes the fail URL on a rejected
// enrollment), its named inputs become the submission fields. The submit
// button is dropped.
func decodeHTMLForm(body []byte) (*FormSubmission, bool) {
	if !bytes.Contains(bytes.ToLower(body), []byte("<form")) {
		return nil, false
	}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, false
	}

	formNode := findNode(doc, "form")
	if formNode == nil {
		return nil, false
	}

	form := &FormSubmission{Inputs: map[string]string{}}
	for _, attr := range formNode.Attr {
		if attr.Key == "action" {
			form.Gateway = attr.Val
			break
		}
	}

	collectInputs(formNode, form.Inputs)
	delete(form.Inputs, "submit")

	return form, true
}

func findNode(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findNode(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func collectInputs(n *html.Node, inputs map[string]string) {
	if n.Type == html.ElementNode && n.Data == "input" {
		var name, value string
		for _, attr := range n.Attr {
			switch attr.Key {
			case "name":
				name = attr.Val
			case "value":
				value = attr.Val
			}
		}
		if name != "" && value != "" {
			inputs[name] = value
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectInputs(c, inputs)
	}
}
