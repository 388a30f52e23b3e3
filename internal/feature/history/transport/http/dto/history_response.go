package dto

// HistoryResponse は日次株価履歴1行分のレスポンスDTOです。
type HistoryResponse struct {
	Ticker string  `json:"ticker"` // 銘柄コード
	Date   string  `json:"date"`   // 取引日 (YYYY-MM-DD)
	Open   float64 `json:"open"`   // 始値
	Close  float64 `json:"close"`  // 終値
	High   float64 `json:"high"`   // 高値
	Low    float64 `json:"low"`    // 安値
	Volume float64 `json:"volume"` // 出来高
}

// ErrorResponse はエラーレスポンスのDTOです。
type ErrorResponse struct {
	Error string `json:"error"`
}
