package service

import (
	"net/url"
	"strings"

	"github.com/skip2/go-qrcode"
)

// DefaultShareCodeGenerator renders a QR code pointing at the dish page.
type DefaultShareCodeGenerator struct {
	BaseURL string
}

func (g DefaultShareCodeGenerator) Generate(dishName string) ([]byte, error) {
	return qrcode.Encode(g.Link(dishName), qrcode.Medium, 256)
}

func (g DefaultShareCodeGenerator) Link(dishName string) string {
	return strings.TrimRight(g.BaseURL, "/") + "/dishes/" + url.PathEscape(dishName)
}
