// Package security はアプリケーションのセキュリティ機能を提供する。
package security

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/doyensec/safeurl"
)

// ErrNotImage はプローブ先のContent-Typeがimage/*でないことを示す。
// ネットワーク起因のプローブ失敗と区別するための番兵エラー。
var ErrNotImage = errors.New("content type is not image")

// ImageGuardService はキャンプ場画像URLの検証機能のインターフェースを定義する。
// 登録・更新時にユーザーが入力した画像URLを受け入れる前に使用する。
type ImageGuardService interface {
	// ValidateURL は画像URLの安全性を静的に検証する。
	// スキーム、ホスト、IPアドレスリテラルの検証を行い、
	// 危険なURLの場合はエラーを返す。
	ValidateURL(rawURL string) error

	// Probe は画像URLにHEADリクエストを送り、image/*のContent-Typeが
	// 返ることを確認する。safeurlクライアントを使用するため、
	// プライベートIPへのリクエストやDNS再バインディング攻撃は
	// Dialerレベルでブロックされる。
	Probe(ctx context.Context, rawURL string) error
}

// allowedSchemes は画像URLで許可されるスキーム。
var allowedSchemes = []string{"http", "https"}

// blockedNetworks は画像URLで拒否されるネットワーク範囲。
// パッケージ初期化時に1回だけパースし、ValidateURLのIPリテラル検証に使用する。
var blockedNetworks []net.IPNet

func init() {
	cidrs := []string{
		// プライベートIPアドレス (RFC 1918)
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		// ループバック (RFC 1122)
		"127.0.0.0/8",
		// リンクローカル (RFC 3927) - クラウドメタデータIP (169.254.169.254) を含む
		"169.254.0.0/16",
		// カレントネットワーク
		"0.0.0.0/8",
		// IPv6ループバック
		"::1/128",
		// IPv6リンクローカル
		"fe80::/10",
		// IPv6ユニークローカル
		"fc00::/7",
	}
	for _, cidr := range cidrs {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			panic(fmt.Sprintf("invalid CIDR in blockedNetworks: %s: %v", cidr, err))
		}
		blockedNetworks = append(blockedNetworks, *network)
	}
}

// imageGuard はImageGuardServiceの実装。
type imageGuard struct {
	timeout time.Duration
}

// NewImageGuard はImageGuardServiceの新しいインスタンスを生成する。
func NewImageGuard(timeout time.Duration) *imageGuard {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &imageGuard{timeout: timeout}
}

// ValidateURL は画像URLの安全性を静的に検証する。
// DNS解決を伴わない検証のみを行う。DNS解決後のIP検証は
// Probeが使用するsafeurlクライアント側のDialerで行われる。
func (g *imageGuard) ValidateURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("empty URL")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	// スキーム検証: http/httpsのみ許可
	scheme := strings.ToLower(parsed.Scheme)
	if !isAllowedScheme(scheme) {
		return fmt.Errorf("disallowed scheme: %s (allowed: %v)", scheme, allowedSchemes)
	}

	// ホスト検証: 空ホストを拒否
	host := parsed.Hostname()
	if host == "" {
		return fmt.Errorf("empty host in URL: %s", rawURL)
	}

	// IPアドレスリテラルの場合はブロック範囲を検証
	if ip := net.ParseIP(host); ip != nil {
		for _, network := range blockedNetworks {
			if network.Contains(ip) {
				return fmt.Errorf("blocked IP address: %s", host)
			}
		}
	}

	return nil
}

// Probe は画像URLにHEADリクエストを送り、画像として解決できることを確認する。
func (g *imageGuard) Probe(ctx context.Context, rawURL string) error {
	if err := g.ValidateURL(rawURL); err != nil {
		return err
	}

	client := g.newSafeClient()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create probe request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("probe request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return fmt.Errorf("probe returned status %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, "image/") {
		return fmt.Errorf("unexpected content type %s: %w", contentType, ErrNotImage)
	}

	return nil
}

// newSafeClient はSSRF防止機能付きのHTTPクライアントを生成する。
// safeurlのデフォルト設定により、プライベートIP、ループバック、
// リンクローカル、メタデータIPへのリクエストがブロックされる。
// net.DialerのControlフックでDNS解決後のIPアドレスを検証するため、
// DNS再バインディング攻撃にも対応している。
func (g *imageGuard) newSafeClient() *http.Client {
	config := safeurl.GetConfigBuilder().
		SetTimeout(g.timeout).
		SetAllowedSchemes(allowedSchemes...).
		SetAllowedPorts(80, 443).
		Build()

	wrappedClient := safeurl.Client(config)
	return wrappedClient.Client
}

// isAllowedScheme はスキームが許可リストに含まれるかを判定する。
func isAllowedScheme(scheme string) bool {
	for _, allowed := range allowedSchemes {
		if scheme == allowed {
			return true
		}
	}
	return false
}

// compile-time interface check
var _ ImageGuardService = (*imageGuard)(nil)
