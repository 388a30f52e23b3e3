package usecase

import "errors"

var (
	// ErrExtraction は外部APIからの取得がバッチ全体として失敗したことを示します。
	ErrExtraction = errors.New("market data extraction failed")
	// ErrEmptyHistory は比較対象の銘柄に履歴データが存在しないことを示します。
	ErrEmptyHistory = errors.New("no history rows for ticker")
)
