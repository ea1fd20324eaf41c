package httphandler

import "time"

func (h *Handler) SetKeepAlive(d time.Duration) { h.keepAlive = d }
