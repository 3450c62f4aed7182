package queue

// consumer.go contains the background consumer that listens to the
// billing.events queue and writes structured logs to logs/billing.log.

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// StartBillingConsumer connects to RabbitMQ, declares the billing.events
// queue (durable), and starts consuming messages. Each message is appended to
// logs/billing.log in a single-line, human-friendly format. The function
// runs a reconnect loop; it keeps running and logs any processing errors
// while rejecting the offending message so the server continues operating.
func StartBillingConsumer() error {
	url := brokerURL()

	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("billing-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn); err != nil {
			log.Printf("billing-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
			continue
		}
	}
}

func consumeLoop(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("billing-consumer: set QoS failed: %v", err)
	}

	_, err = ch.QueueDeclare(billingQueueName, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(billingQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleMessage(d.Body); err != nil {
			log.Printf("billing-consumer: handle message failed: %v", err)
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

// envelope holds the union of the billing event fields; Type decides
// which ones are meaningful for a given message.
type envelope struct {
	Type          string `json:"type"`
	BillID        uint64 `json:"bill_id"`
	BillNumber    string `json:"bill_number"`
	MerchantName  string `json:"merchant_name"`
	UserID        uint64 `json:"user_id"`
	TotalAmount   string `json:"total_amount"`
	PaymentID     uint64 `json:"payment_id"`
	Amount        string `json:"amount"`
	PaymentMethod string `json:"payment_method"`
	BillStatus    string `json:"bill_status"`
	IssuedAt      string `json:"issued_at"`
	RecordedAt    string `json:"recorded_at"`
}

func handleMessage(body []byte) error {
	var ev envelope
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	// Ensure logs directory exists
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	fpath := filepath.Join("logs", "billing.log")
	f, err := os.OpenFile(fpath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	var line string
	switch ev.Type {
	case TypeBillIssued:
		line = fmt.Sprintf("[%s] Bill issued | bill_id=%d | bill_number=%s | merchant=\"%s\" | user_id=%d | total=%s\n",
			ev.IssuedAt, ev.BillID, ev.BillNumber, ev.MerchantName, ev.UserID, ev.TotalAmount)
	case TypePaymentRecorded:
		line = fmt.Sprintf("[%s] Payment recorded | payment_id=%d | bill_id=%d | bill_number=%s | amount=%s | method=%s | bill_status=%s\n",
			ev.RecordedAt, ev.PaymentID, ev.BillID, ev.BillNumber, ev.Amount, ev.PaymentMethod, ev.BillStatus)
	default:
		return fmt.Errorf("unknown event type %q", ev.Type)
	}

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
