package transport

import (
	"net/http"
	"strings"

	"github.com/skip2/go-qrcode"
)

// roomQRHandler serves a join-link QR code for a room at
// /room/{id}/qr.png, encoding a ws:// URL the scanning device can connect
// to directly.
func roomQRHandler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/room/")
		roomID, rest, ok := strings.Cut(path, "/")
		if !ok || rest != "qr.png" {
			http.NotFound(w, r)
			return
		}
		if _, ok := hub.rooms.GetRoom(roomID); !ok {
			http.NotFound(w, r)
			return
		}

		scheme := "ws"
		if r.TLS != nil {
			scheme = "wss"
		}
		joinURL := scheme + "://" + r.Host + "/ws?room=" + roomID

		png, err := qrcode.Encode(joinURL, qrcode.Medium, 256)
		if err != nil {
			http.Error(w, "failed to generate QR code", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Write(png)
	}
}
