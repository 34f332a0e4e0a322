// Package federation contiene los DTOs de los endpoints de federación.
package federation

// URLResponse es la URL de autorización armada para el partner.
type URLResponse struct {
	URL   string `json:"url"`
	State string `json:"state"`
}

// ByEmailResponse identifica la federación que atiende un email.
type ByEmailResponse struct {
	Name   string `json:"name"`
	SiteID string `json:"site_id,omitempty"`
}

// ExchangeRequest completa el handshake: estado de correlación más el
// authorization code devuelto por el partner.
type ExchangeRequest struct {
	State string `json:"state"`
	Code  string `json:"code"`
}

// ExchangeResponse entrega la sesión del broker y un function code de un
// solo uso para el handoff al portal.
type ExchangeResponse struct {
	Identity     string `json:"identity"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int64  `json:"expires_in"`
	FunctionCode string `json:"function_code,omitempty"`
}

// RedeemRequest consume un function code emitido en el exchange.
type RedeemRequest struct {
	Code string `json:"code"`
}

// RedeemResponse es la identidad que el code llevaba.
type RedeemResponse struct {
	Identity string `json:"identity"`
}
