package afip

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/webconf/checkout/internal/domain/billing"
)

const wsfeNamespace = "http://ar.gov.afip.dif.FEV1/"

type soapEnvelope struct {
	XMLName xml.Name `xml:"soap:Envelope"`
	SoapNS  string   `xml:"xmlns:soap,attr"`
	Body    soapBody `xml:"soap:Body"`
}

type soapBody struct {
	Payload interface{}
}

type wsfeAuth struct {
	Token string `xml:"Token"`
	Sign  string `xml:"Sign"`
	Cuit  int64  `xml:"Cuit"`
}

type feCompUltimoAutorizadoRequest struct {
	XMLName  xml.Name `xml:"FECompUltimoAutorizado"`
	NS       string   `xml:"xmlns,attr"`
	Auth     wsfeAuth `xml:"Auth"`
	PtoVta   int      `xml:"PtoVta"`
	CbteTipo int      `xml:"CbteTipo"`
}

type feCAESolicitarRequest struct {
	XMLName xml.Name `xml:"FECAESolicitar"`
	NS      string   `xml:"xmlns,attr"`
	Auth    wsfeAuth `xml:"Auth"`
	Req     feCAEReq `xml:"FeCAEReq"`
}

type feCAEReq struct {
	Cab feCabReq `xml:"FeCabReq"`
	Det feDetReq `xml:"FeDetReq"`
}

type feCabReq struct {
	CantReg  int `xml:"CantReg"`
	PtoVta   int `xml:"PtoVta"`
	CbteTipo int `xml:"CbteTipo"`
}

type feDetReq struct {
	Requests []feCAEDetRequest `xml:"FECAEDetRequest"`
}

// feCAEDetRequest mirrors WSFE's FECAEDetRequest. Monetary fields are
// pre-formatted strings so decimals survive marshalling untouched.
type feCAEDetRequest struct {
	Concepto     int    `xml:"Concepto"`
	DocTipo      int    `xml:"DocTipo"`
	DocNro       string `xml:"DocNro"`
	CbteDesde    int64  `xml:"CbteDesde"`
	CbteHasta    int64  `xml:"CbteHasta"`
	CbteFch      string `xml:"CbteFch"`
	ImpTotal     string `xml:"ImpTotal"`
	ImpTotConc   string `xml:"ImpTotConc"`
	ImpNeto      string `xml:"ImpNeto"`
	ImpOpEx      string `xml:"ImpOpEx"`
	ImpTrib      string `xml:"ImpTrib"`
	ImpIVA       string `xml:"ImpIVA"`
	FchServDesde string `xml:"FchServDesde"`
	FchServHasta string `xml:"FchServHasta"`
	FchVtoPago   string `xml:"FchVtoPago"`
	MonId        string `xml:"MonId"`
	MonCotiz     string `xml:"MonCotiz"`
}

type wsfeErrors struct {
	Err []wsfeError `xml:"Err"`
}

type wsfeError struct {
	Code int    `xml:"Code"`
	Msg  string `xml:"Msg"`
}

func (e wsfeErrors) messages() string {
	parts := make([]string, 0, len(e.Err))
	for _, err := range e.Err {
		parts = append(parts, fmt.Sprintf("[%d] %s", err.Code, err.Msg))
	}
	return strings.Join(parts, "; ")
}

func (e wsfeErrors) hasAuthError() bool {
	for _, err := range e.Err {
		if isAuthErrorCode(err.Code) {
			return true
		}
	}
	return false
}

type lastAuthorizedEnvelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Result  struct {
		CbteNro int64      `xml:"CbteNro"`
		Errors  wsfeErrors `xml:"Errors"`
	} `xml:"Body>FECompUltimoAutorizadoResponse>FECompUltimoAutorizadoResult"`
}

type caeEnvelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Result  struct {
		FeCabResp struct {
			Resultado string `xml:"Resultado"`
		} `xml:"FeCabResp"`
		FeDetResp struct {
			Responses []struct {
				Resultado     string `xml:"Resultado"`
				CAE           string `xml:"CAE"`
				CAEFchVto     string `xml:"CAEFchVto"`
				Observaciones struct {
					Obs []wsfeError `xml:"Obs"`
				} `xml:"Observaciones"`
			} `xml:"FECAEDetResponse"`
		} `xml:"FeDetResp"`
		Errors wsfeErrors `xml:"Errors"`
	} `xml:"Body>FECAESolicitarResponse>FECAESolicitarResult"`
}

func marshalEnvelope(payload interface{}) ([]byte, error) {
	envelope := soapEnvelope{
		SoapNS: "http://schemas.xmlsoap.org/soap/envelope/",
		Body:   soapBody{Payload: payload},
	}
	data, err := xml.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("marshal SOAP envelope: %w", err)
	}
	return append([]byte(xml.Header), data...), nil
}

func (c *Client) lastAuthorized(ctx context.Context, creds billing.TaxCredentials, invoiceType, pointOfSale int) (int64, error) {
	body, err := marshalEnvelope(feCompUltimoAutorizadoRequest{
		NS:       wsfeNamespace,
		Auth:     wsfeAuth{Token: creds.Token, Sign: creds.Sign, Cuit: c.cuit},
		PtoVta:   pointOfSale,
		CbteTipo: invoiceType,
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", billing.ErrTaxAuthUnavailable, err)
	}

	data, err := c.post(ctx, c.cfg.InvoiceURL, wsfeNamespace+"FECompUltimoAutorizado", body)
	if err != nil {
		return 0, err
	}

	var resp lastAuthorizedEnvelope
	if err := xml.Unmarshal(data, &resp); err != nil {
		return 0, fmt.Errorf("%w: malformed WSFE response: %v", billing.ErrTaxAuthUnavailable, err)
	}
	if len(resp.Result.Errors.Err) > 0 {
		if resp.Result.Errors.hasAuthError() {
			return 0, fmt.Errorf("%w: %s", billing.ErrTaxAuthAuthentication, resp.Result.Errors.messages())
		}
		return 0, fmt.Errorf("%w: %s", billing.ErrTaxAuthUnavailable, resp.Result.Errors.messages())
	}
	return resp.Result.CbteNro, nil
}

func (c *Client) requestCAE(ctx context.Context, creds billing.TaxCredentials, req *billing.TaxInvoiceRequest) (billing.TaxAuthorization, error) {
	issued := req.IssuedAt
	if issued.IsZero() {
		issued = time.Now()
	}
	total := req.Total.StringFixed(2)

	detail := feCAEDetRequest{
		Concepto:     req.Concept,
		DocTipo:      req.DocumentType,
		DocNro:       onlyDigits(req.DocumentNumber),
		CbteDesde:    req.Number,
		CbteHasta:    req.Number,
		CbteFch:      issued.Format(dateLayout),
		ImpTotal:     total,
		ImpTotConc:   "0.00",
		ImpNeto:      total,
		ImpOpEx:      "0.00",
		ImpTrib:      "0.00",
		ImpIVA:       "0.00",
		FchServDesde: req.ServiceFrom.Format(dateLayout),
		FchServHasta: req.ServiceTo.Format(dateLayout),
		FchVtoPago:   issued.Format(dateLayout),
		MonId:        monID(req.Currency),
		MonCotiz:     "1.000",
	}

	body, err := marshalEnvelope(feCAESolicitarRequest{
		NS:   wsfeNamespace,
		Auth: wsfeAuth{Token: creds.Token, Sign: creds.Sign, Cuit: c.cuit},
		Req: feCAEReq{
			Cab: feCabReq{CantReg: 1, PtoVta: req.PointOfSale, CbteTipo: req.InvoiceType},
			Det: feDetReq{Requests: []feCAEDetRequest{detail}},
		},
	})
	if err != nil {
		return billing.TaxAuthorization{}, fmt.Errorf("%w: %v", billing.ErrTaxAuthUnavailable, err)
	}

	data, err := c.post(ctx, c.cfg.InvoiceURL, wsfeNamespace+"FECAESolicitar", body)
	if err != nil {
		return billing.TaxAuthorization{}, err
	}

	var resp caeEnvelope
	if err := xml.Unmarshal(data, &resp); err != nil {
		return billing.TaxAuthorization{}, fmt.Errorf("%w: malformed WSFE response: %v", billing.ErrTaxAuthUnavailable, err)
	}

	result := resp.Result
	if len(result.Errors.Err) > 0 {
		if result.Errors.hasAuthError() {
			return billing.TaxAuthorization{}, fmt.Errorf("%w: %s", billing.ErrTaxAuthAuthentication, result.Errors.messages())
		}
		return billing.TaxAuthorization{}, fmt.Errorf("%w: %s", billing.ErrTaxAuthRejected, result.Errors.messages())
	}
	if len(result.FeDetResp.Responses) == 0 {
		return billing.TaxAuthorization{}, fmt.Errorf("%w: empty detail in WSFE response", billing.ErrTaxAuthUnavailable)
	}

	detail0 := result.FeDetResp.Responses[0]
	if result.FeCabResp.Resultado != "A" || detail0.Resultado != "A" || detail0.CAE == "" {
		obs := wsfeErrors{Err: detail0.Observaciones.Obs}
		return billing.TaxAuthorization{}, fmt.Errorf("%w: %s", billing.ErrTaxAuthRejected, obs.messages())
	}

	expiry, err := time.Parse(dateLayout, detail0.CAEFchVto)
	if err != nil {
		return billing.TaxAuthorization{}, fmt.Errorf("%w: bad CAE expiry %q", billing.ErrTaxAuthUnavailable, detail0.CAEFchVto)
	}

	return billing.TaxAuthorization{CAE: detail0.CAE, CAEExpiry: expiry}, nil
}

// monID maps ISO currency codes onto WSFE currency identifiers
func monID(currency string) string {
	switch strings.ToUpper(currency) {
	case "USD":
		return "DOL"
	default:
		return "PES"
	}
}
