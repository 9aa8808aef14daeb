package paymongo

// Request/response envelopes for the PayMongo v1 API. Everything is
// wrapped in {"data": {"attributes": ...}}.

type redirect struct {
	Success     string `json:"success,omitempty"`
	Failed      string `json:"failed,omitempty"`
	CheckoutURL string `json:"checkout_url,omitempty"`
}

type billingInfo struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

type sourceAttributes struct {
	Type     string            `json:"type"`
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Redirect redirect          `json:"redirect"`
	Billing  *billingInfo      `json:"billing,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type sourceRequest struct {
	Data struct {
		Attributes sourceAttributes `json:"attributes"`
	} `json:"data"`
}

type linkAttributes struct {
	Amount      int64    `json:"amount"`
	Currency    string   `json:"currency"`
	Description string   `json:"description"`
	Remarks     string   `json:"remarks,omitempty"`
	Redirect    redirect `json:"redirect"`
}

type linkRequest struct {
	Data struct {
		Attributes linkAttributes `json:"attributes"`
	} `json:"data"`
}

type responseAttributes struct {
	Status      string   `json:"status"`
	Amount      int64    `json:"amount"`
	Redirect    redirect `json:"redirect"`
	CheckoutURL string   `json:"checkout_url,omitempty"`
}

type apiResponse struct {
	Data struct {
		ID         string             `json:"id"`
		Type       string             `json:"type"`
		Attributes responseAttributes `json:"attributes"`
	} `json:"data"`
}

type apiErrorBody struct {
	Errors []struct {
		Code   string `json:"code"`
		Detail string `json:"detail"`
	} `json:"errors"`
}
