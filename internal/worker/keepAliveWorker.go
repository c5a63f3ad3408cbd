package worker

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// KeepAliveWorker периодически пингует внешний адрес сервиса, чтобы
// бесплатный хостинг не усыпил процесс между интеракциями.
type KeepAliveWorker struct {
	externalURL string
	interval    time.Duration
	client      *http.Client
}

func NewKeepAliveWorker(externalURL string, interval time.Duration) *KeepAliveWorker {
	return &KeepAliveWorker{
		externalURL: externalURL,
		interval:    interval,
		client:      &http.Client{Timeout: 30 * time.Second},
	}
}

func (w *KeepAliveWorker) Start(ctx context.Context) {
	if w.externalURL == "" {
		logrus.Warn("EXTERNAL_URL is not set, keep-alive pings disabled, the service may fall asleep")
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logrus.Info("Keep-alive worker started")

	for {
		select {
		case <-ctx.Done():
			logrus.Info("Keep-alive worker stopped")
			return
		case <-ticker.C:
			w.ping(ctx)
		}
	}
}

func (w *KeepAliveWorker) ping(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.externalURL, nil)
	if err != nil {
		logrus.Errorf("Keep-alive request build failed: %v", err)
		return
	}

	resp, err := w.client.Do(req)
	if err != nil {
		logrus.Errorf("Self-ping failed: %v. Check EXTERNAL_URL", err)
		return
	}
	resp.Body.Close()

	logrus.Debugf("Self-ping OK: status %d", resp.StatusCode)
}
