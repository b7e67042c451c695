package messagegateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// Delivery channels supported by the mock provider.
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

const (
	DeliveryStatusQueued = "queued"
	DeliveryStatusSent   = "sent"
	DeliveryStatusFailed = "failed"
)

var ErrQueueFull = errors.New("message queue full, please try again later")

// MessageJob is one outbound delivery handed to the worker pool.
type MessageJob struct {
	ExternalID string
	Channel    string
	Recipient  string
	Subject    string
	Body       string
}

type DeliveryResult struct {
	ExternalID string `json:"external_id"`
	MessageID  string `json:"message_id"`
	Status     string `json:"status"`
}

// StatusCallback is invoked from a worker goroutine once a delivery settles.
type StatusCallback func(externalID, messageID, status string)

type Worker struct {
	ID         int
	WorkerPool chan chan MessageJob
	JobChannel chan MessageJob
	Logger     *slog.Logger
}

func NewWorker(id int, workerPool chan chan MessageJob, logger *slog.Logger) *Worker {
	return &Worker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan MessageJob),
		Logger:     logger,
	}
}

func (w *Worker) Start(ctx context.Context, wg *sync.WaitGroup, processFunc func(MessageJob)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			w.WorkerPool <- w.JobChannel

			select {
			case job := <-w.JobChannel:
				w.Logger.Debug("worker processing message", "worker_id", w.ID, "external_id", job.ExternalID)
				processFunc(job)
			case <-ctx.Done():
				w.Logger.Debug("worker shutting down", "worker_id", w.ID)
				return
			}
		}
	}()
}

// Client delivers communication messages through the mock provider API.
// Deliveries are queued and sent from a bounded worker pool so handler
// latency never depends on the provider.
type Client struct {
	mockAPIURL  string
	apiKey      string
	sendTimeout time.Duration
	logger      *slog.Logger
	onStatus    StatusCallback

	jobQueue   chan MessageJob
	workerPool chan chan MessageJob
	maxWorkers int
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once
}

type Config struct {
	MockAPIURL   string
	APIKey       string
	SendTimeout  time.Duration
	MaxWorkers   int
	JobQueueSize int
}

func NewClient(config Config, logger *slog.Logger) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	maxWorkers := config.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 5
	}

	jobQueueSize := config.JobQueueSize
	if jobQueueSize <= 0 {
		jobQueueSize = 100
	}

	sendTimeout := config.SendTimeout
	if sendTimeout <= 0 {
		sendTimeout = 10 * time.Second
	}

	client := &Client{
		mockAPIURL:  config.MockAPIURL,
		apiKey:      config.APIKey,
		sendTimeout: sendTimeout,
		logger:      logger,

		maxWorkers: maxWorkers,
		jobQueue:   make(chan MessageJob, jobQueueSize),
		workerPool: make(chan chan MessageJob, maxWorkers),
		ctx:        ctx,
		cancel:     cancel,
	}

	client.startWorkerPool()

	return client
}

// SetStatusCallback registers the delivery settlement hook. Must be called
// before any Send.
func (c *Client) SetStatusCallback(cb StatusCallback) {
	c.onStatus = cb
}

func (c *Client) startWorkerPool() {
	c.once.Do(func() {
		for i := 0; i < c.maxWorkers; i++ {
			worker := NewWorker(i, c.workerPool, c.logger)
			worker.Start(c.ctx, &c.wg, c.processMessageJob)
		}

		go c.dispatch()

		c.logger.Info("message gateway worker pool started",
			"max_workers", c.maxWorkers,
			"queue_size", cap(c.jobQueue))
	})
}

func (c *Client) dispatch() {
	c.wg.Add(1)
	defer c.wg.Done()

	for {
		select {
		case job := <-c.jobQueue:
			select {
			case jobChannel := <-c.workerPool:
				select {
				case jobChannel <- job:
				case <-c.ctx.Done():
					c.logger.Info("dispatcher shutting down")
					return
				}
			case <-c.ctx.Done():
				c.logger.Info("dispatcher shutting down")
				return
			}
		case <-c.ctx.Done():
			c.logger.Info("dispatcher shutting down")
			return
		}
	}
}

func (c *Client) Shutdown() {
	c.logger.Info("shutting down message gateway client")
	c.cancel()
	c.wg.Wait()
	c.logger.Info("message gateway client shutdown complete")
}

// Send queues a delivery and returns immediately with a queued result.
func (c *Client) Send(job MessageJob) (*DeliveryResult, error) {
	if job.Recipient == "" {
		return nil, errors.New("recipient is required")
	}
	if job.Channel != ChannelEmail && job.Channel != ChannelSMS {
		return nil, fmt.Errorf("unsupported channel: %s", job.Channel)
	}

	select {
	case c.jobQueue <- job:
		c.logger.Info("message queued for delivery",
			"external_id", job.ExternalID,
			"channel", job.Channel,
			"queue_length", len(c.jobQueue))
	default:
		c.logger.Warn("message queue full, rejecting delivery",
			"external_id", job.ExternalID,
			"queue_capacity", cap(c.jobQueue))
		return nil, ErrQueueFull
	}

	return &DeliveryResult{
		ExternalID: job.ExternalID,
		Status:     DeliveryStatusQueued,
	}, nil
}

func (c *Client) processMessageJob(job MessageJob) {
	c.logger.Info("processing message delivery", "external_id", job.ExternalID, "channel", job.Channel)

	messageID, err := c.deliverMessage(job)
	status := DeliveryStatusSent
	if err != nil {
		status = DeliveryStatusFailed
		c.logger.Error("message delivery failed",
			"external_id", job.ExternalID,
			"channel", job.Channel,
			"error", err)
	} else {
		c.logger.Info("message delivered",
			"external_id", job.ExternalID,
			"message_id", messageID)
	}

	if c.onStatus != nil {
		c.onStatus(job.ExternalID, messageID, status)
	}
}

func (c *Client) deliverMessage(job MessageJob) (string, error) {
	payload := map[string]interface{}{
		"external_id": job.ExternalID,
		"channel":     job.Channel,
		"recipient":   job.Recipient,
		"subject":     job.Subject,
		"body":        job.Body,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal message request: %w", err)
	}

	ctx, cancel := context.WithTimeout(c.ctx, c.sendTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.mockAPIURL+"/messages", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	client := &http.Client{Timeout: c.sendTimeout}
	resp, err := client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("provider API returned status %d", resp.StatusCode)
	}

	var apiResponse struct {
		Data DeliveryResult `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	return apiResponse.Data.MessageID, nil
}
