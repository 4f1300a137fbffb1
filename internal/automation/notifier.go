package automation

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	crmdomain "crmhub-backend/internal/crm/domain"
)

// ConversionEvent is posted to the downstream automation endpoint when
// a prospect is promoted to a lead.
type ConversionEvent struct {
	Event         string              `json:"event"`
	ProspectEmail string              `json:"prospect_email"`
	Prospect      *crmdomain.Prospect `json:"prospect"`
	Lead          *crmdomain.Lead     `json:"lead"`
	Message       *crmdomain.Message  `json:"message"`
	Timestamp     time.Time           `json:"timestamp"`
}

const EventProspectReplied = "prospect_replied"

// Notifier delivers conversion events to the automation webhook from a
// bounded background queue. Delivery is best-effort: a full queue or an
// exhausted retry budget drops the event with a log line and never
// affects the promotion that produced it.
type Notifier struct {
	webhookURL  string
	httpClient  *http.Client
	queue       chan ConversionEvent
	workerWg    sync.WaitGroup
	maxAttempts int
	started     bool
	mu          sync.Mutex
}

// NewNotifier creates a new notifier. An empty webhook URL disables
// delivery; Enqueue becomes a no-op.
func NewNotifier(webhookURL string) *Notifier {
	return &Notifier{
		webhookURL:  webhookURL,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		queue:       make(chan ConversionEvent, 100),
		maxAttempts: 3,
	}
}

// Start starts the delivery worker
func (n *Notifier) Start() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.started || n.webhookURL == "" {
		return
	}
	n.workerWg.Add(1)
	go n.worker()
	n.started = true
	log.Printf("[Automation] Notifier started for %s", n.webhookURL)
}

// Stop drains the queue and stops the worker
func (n *Notifier) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.started {
		return
	}
	close(n.queue)
	n.workerWg.Wait()
	n.started = false
	log.Println("[Automation] Notifier stopped")
}

// Enqueue adds an event to the delivery queue (non-blocking). The
// started check runs under the mutex so a concurrent Stop cannot close
// the queue between the check and the send.
func (n *Notifier) Enqueue(ev ConversionEvent) bool {
	if n.webhookURL == "" {
		return true
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.started {
		log.Printf("[Automation] Notifier not running, dropping %s event for %s", ev.Event, ev.ProspectEmail)
		return false
	}
	select {
	case n.queue <- ev:
		return true
	default:
		log.Printf("[Automation] Queue full, dropping %s event for %s", ev.Event, ev.ProspectEmail)
		return false
	}
}

func (n *Notifier) worker() {
	defer n.workerWg.Done()

	for ev := range n.queue {
		n.deliver(ev)
	}
}

func (n *Notifier) deliver(ev ConversionEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Printf("[Automation] Failed to encode %s event: %v", ev.Event, err)
		return
	}

	backoff := time.Second
	for attempt := 1; attempt <= n.maxAttempts; attempt++ {
		if n.post(payload) {
			return
		}
		if attempt < n.maxAttempts {
			time.Sleep(backoff)
			backoff *= 2
		}
	}
	log.Printf("[Automation] Giving up on %s event for %s after %d attempts", ev.Event, ev.ProspectEmail, n.maxAttempts)
}

func (n *Notifier) post(payload []byte) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(payload))
	if err != nil {
		log.Printf("[Automation] Bad webhook request: %v", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		log.Printf("[Automation] Webhook delivery failed: %v", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		log.Printf("[Automation] Webhook answered %d", resp.StatusCode)
		return false
	}
	return true
}
