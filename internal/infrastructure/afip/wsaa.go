package afip

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"encoding/xml"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/smallstep/pkcs7"

	"github.com/webconf/checkout/internal/domain/billing"
)

// wsaaService is the WSFE service name the login ticket requests
// access to
const wsaaService = "wsfe"

// ticketTTL is how long the requested credentials should live. WSAA
// caps this server-side, the returned expirationTime is authoritative.
const ticketTTL = 12 * time.Hour

type loginTicketRequest struct {
	XMLName xml.Name `xml:"loginTicketRequest"`
	Version string   `xml:"version,attr"`
	Header  struct {
		UniqueID       uint32 `xml:"uniqueId"`
		GenerationTime string `xml:"generationTime"`
		ExpirationTime string `xml:"expirationTime"`
	} `xml:"header"`
	Service string `xml:"service"`
}

type loginCmsEnvelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Return  string   `xml:"Body>loginCmsResponse>loginCmsReturn"`
	Fault   struct {
		Code   string `xml:"faultcode"`
		String string `xml:"faultstring"`
	} `xml:"Body>Fault"`
}

type loginTicketResponse struct {
	XMLName xml.Name `xml:"loginTicketResponse"`
	Header  struct {
		ExpirationTime string `xml:"expirationTime"`
	} `xml:"header"`
	Credentials struct {
		Token string `xml:"token"`
		Sign  string `xml:"sign"`
	} `xml:"credentials"`
}

// signLoginTicket builds the TRA document and wraps it in a CMS
// signature with the configured certificate and private key
func (c *Client) signLoginTicket(now time.Time) (string, error) {
	tra := loginTicketRequest{Version: "1.0", Service: wsaaService}
	tra.Header.UniqueID = rand.Uint32()
	tra.Header.GenerationTime = now.Add(-10 * time.Minute).Format(time.RFC3339)
	tra.Header.ExpirationTime = now.Add(ticketTTL).Format(time.RFC3339)

	traXML, err := xml.Marshal(tra)
	if err != nil {
		return "", fmt.Errorf("marshal login ticket: %w", err)
	}
	traXML = append([]byte(xml.Header), traXML...)

	cert, key, err := parseCertificate(c.cfg.Certificate, c.cfg.PrivateKey)
	if err != nil {
		return "", err
	}

	signed, err := pkcs7.NewSignedData(traXML)
	if err != nil {
		return "", fmt.Errorf("prepare CMS: %w", err)
	}
	if err := signed.AddSigner(cert, key, pkcs7.SignerInfoConfig{}); err != nil {
		return "", fmt.Errorf("sign login ticket: %w", err)
	}
	der, err := signed.Finish()
	if err != nil {
		return "", fmt.Errorf("encode CMS: %w", err)
	}

	return base64.StdEncoding.EncodeToString(der), nil
}

// loginCms submits the signed ticket to WSAA and parses the returned
// credentials
func (c *Client) loginCms(ctx context.Context, cms string) (billing.TaxCredentials, error) {
	var body strings.Builder
	body.WriteString(`<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/" xmlns:wsaa="http://wsaa.view.sua.dvadac.desein.afip.gov">`)
	body.WriteString(`<soapenv:Body><wsaa:loginCms><wsaa:in0>`)
	if err := xml.EscapeText(&body, []byte(cms)); err != nil {
		return billing.TaxCredentials{}, fmt.Errorf("%w: %v", billing.ErrTaxAuthAuthentication, err)
	}
	body.WriteString(`</wsaa:in0></wsaa:loginCms></soapenv:Body></soapenv:Envelope>`)

	data, err := c.post(ctx, c.cfg.AuthURL, "", []byte(body.String()))
	if err != nil {
		return billing.TaxCredentials{}, err
	}

	var envelope loginCmsEnvelope
	if err := xml.Unmarshal(data, &envelope); err != nil {
		return billing.TaxCredentials{}, fmt.Errorf("%w: malformed WSAA response: %v", billing.ErrTaxAuthUnavailable, err)
	}
	// WSAA reports credential problems as SOAP faults
	if envelope.Fault.String != "" {
		return billing.TaxCredentials{}, fmt.Errorf("%w: %s", billing.ErrTaxAuthAuthentication, envelope.Fault.String)
	}

	var ticket loginTicketResponse
	if err := xml.Unmarshal([]byte(envelope.Return), &ticket); err != nil {
		return billing.TaxCredentials{}, fmt.Errorf("%w: malformed login ticket: %v", billing.ErrTaxAuthUnavailable, err)
	}
	if ticket.Credentials.Token == "" || ticket.Credentials.Sign == "" {
		return billing.TaxCredentials{}, fmt.Errorf("%w: empty credentials in login ticket", billing.ErrTaxAuthAuthentication)
	}

	expiresAt, err := time.Parse(time.RFC3339, ticket.Header.ExpirationTime)
	if err != nil {
		return billing.TaxCredentials{}, fmt.Errorf("%w: bad expiration time %q", billing.ErrTaxAuthUnavailable, ticket.Header.ExpirationTime)
	}

	return billing.TaxCredentials{
		Token:     ticket.Credentials.Token,
		Sign:      ticket.Credentials.Sign,
		ExpiresAt: expiresAt,
	}, nil
}

// parseCertificate decodes the PEM certificate and RSA private key.
// Escaped newlines are tolerated so the pair can be passed through
// environment variables.
func parseCertificate(certPEM, keyPEM string) (*x509.Certificate, *rsa.PrivateKey, error) {
	certPEM = strings.ReplaceAll(certPEM, `\n`, "\n")
	keyPEM = strings.ReplaceAll(keyPEM, `\n`, "\n")

	block, _ := pem.Decode([]byte(certPEM))
	if block == nil {
		return nil, nil, fmt.Errorf("certificate is not valid PEM")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, nil, fmt.Errorf("parse certificate: %w", err)
	}

	block, _ = pem.Decode([]byte(keyPEM))
	if block == nil {
		return nil, nil, fmt.Errorf("private key is not valid PEM")
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return cert, key, nil
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, nil, fmt.Errorf("parse private key: %w", err)
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, nil, fmt.Errorf("private key is not RSA")
	}
	return cert, key, nil
}
