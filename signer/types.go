package signer

// remote signer response status
const (
	StatusSuccess      = "Success"
	StatusPending      = "Pending"
	StatusRejected     = "Rejected"
	StatusNotConnected = "NotConnected"
)

// DataResult result payload
type DataResult struct {
	Result string `json:"result"`
}

// DataResultResp remote signer response
type DataResultResp struct {
	Status string
	Tip    string
	Error  string
	Data   *DataResult
}

// BoolResp remote signer bool response
type BoolResp struct {
	Status string
	Tip    string
	Error  string
	Data   bool
}

// SignData sign request
type SignData struct {
	TxType            string
	RequestID         string
	EnvelopeXDR       string
	NetworkPassphrase string
	Address           string
	TimeStamp         string
}

// SignStatus status of an asynchronous sign request
type SignStatus struct {
	Status      string
	EnvelopeXDR string
	Tip         string
	Error       string
	TimeStamp   string
}
