package http

import (
	"net"
	"net/http"
	"time"
)

// NewHTTPClient は市場データAPI呼び出し用に設定されたHTTPクライアントを作成します。
//
// 呼び出し先は単一ホスト（チャートAPI）で、ティッカーごとに順次リクエストするため、
// ホスト単位のアイドル接続を保持してTCP/TLSの再確立を避けます。
//
// 注意:
//   - http.DefaultClientにはタイムアウトがないため、常にカスタムクライアントを使用すること
//   - timeoutが0以下の場合は30秒を使用
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: timeout,
	}
	return &http.Client{Timeout: timeout, Transport: t}
}
