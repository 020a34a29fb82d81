package middleware

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func swaggerRouter(cfg SwaggerConfig) *gin.Engine {
	r := gin.New()
	r.GET("/swagger/*any", SwaggerProtection(cfg), func(c *gin.Context) {
		c.String(http.StatusOK, "docs")
	})
	return r
}

func serveFrom(r *gin.Engine, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSwaggerProtection(t *testing.T) {
	t.Run("disabled answers not found", func(t *testing.T) {
		w := serveFrom(swaggerRouter(SwaggerConfig{Enabled: false}), "10.0.0.1:1234")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_NOT_FOUND")
	})

	t.Run("enabled without an allow list serves everyone", func(t *testing.T) {
		w := serveFrom(swaggerRouter(SwaggerConfig{Enabled: true}), "203.0.113.9:1234")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "docs", w.Body.String())
	})

	t.Run("allow list", func(t *testing.T) {
		r := swaggerRouter(SwaggerConfig{
			Enabled:    true,
			AllowedIPs: []string{"192.168.1.10", "10.0.0.0/8", "not-an-ip"},
		})

		tests := []struct {
			addr string
			want int
		}{
			{"192.168.1.10:4000", http.StatusOK},
			{"10.20.30.40:4000", http.StatusOK},
			{"192.168.1.11:4000", http.StatusForbidden},
			{"203.0.113.9:4000", http.StatusForbidden},
		}
		for _, tt := range tests {
			t.Run(tt.addr, func(t *testing.T) {
				assert.Equal(t, tt.want, serveFrom(r, tt.addr).Code)
			})
		}
	})
}

func TestIsIPAllowed(t *testing.T) {
	_, network, _ := net.ParseCIDR("172.16.0.0/12")
	ips := []net.IP{net.ParseIP("::1")}

	assert.True(t, isIPAllowed(net.ParseIP("::1"), ips, nil))
	assert.True(t, isIPAllowed(net.ParseIP("172.20.1.1"), nil, []*net.IPNet{network}))
	assert.False(t, isIPAllowed(net.ParseIP("172.32.0.1"), ips, []*net.IPNet{network}))
	assert.False(t, isIPAllowed(nil, ips, []*net.IPNet{network}))
}
