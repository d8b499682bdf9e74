package event

import (
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Mailer is what the consumer needs from the SMTP layer.
type Mailer interface {
	Send(subject, body string, recipients []string) error
}

// EventConsumer is the notification email worker. It drains the bound
// queue, renders one email per event and acks only after the send went
// through; failed sends are nacked back onto the queue for retry.
type EventConsumer struct {
	client    *RabbitMQClient
	mailer    Mailer
	feAddress string
	shutdown  chan struct{}
	wg        sync.WaitGroup
	enabled   bool
}

func NewEventConsumer(rabbitURI, exchange, queueName, feAddress string, mailer Mailer) (*EventConsumer, error) {
	if rabbitURI == "" {
		log.Println("Warning: RabbitMQ URI is empty, event consumption is disabled")
		return &EventConsumer{mailer: mailer, feAddress: feAddress, shutdown: make(chan struct{}), enabled: false}, nil
	}

	client, err := NewRabbitMQClient(rabbitURI, exchange, queueName)
	if err != nil {
		return nil, err
	}
	if err := client.setupExchangeAndQueue(); err != nil {
		client.Close()
		return nil, err
	}

	return &EventConsumer{
		client:    client,
		mailer:    mailer,
		feAddress: feAddress,
		shutdown:  make(chan struct{}),
		enabled:   true,
	}, nil
}

func (c *EventConsumer) Start() error {
	if !c.enabled {
		log.Println("Event consumption is disabled, not starting consumer")
		return nil
	}

	msgs, err := c.client.Consume()
	if err != nil {
		return fmt.Errorf("failed to register a consumer: %w", err)
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.consume(msgs)
	}()

	log.Println("Notification email worker started")
	return nil
}

func (c *EventConsumer) consume(msgs <-chan amqp.Delivery) {
	for {
		select {
		case <-c.shutdown:
			log.Println("Stopping notification email worker")
			return
		case msg, ok := <-msgs:
			if !ok {
				log.Println("Message channel closed, worker exiting")
				time.Sleep(5 * time.Second)
				return
			}

			if err := c.processMessage(msg); err != nil {
				log.Printf("Error processing message: %v", err)
				if err := msg.Nack(false, true); err != nil {
					log.Printf("Error NACKing message: %v", err)
				}
			} else {
				if err := msg.Ack(false); err != nil {
					log.Printf("Error ACKing message: %v", err)
				}
			}
		}
	}
}

func (c *EventConsumer) processMessage(msg amqp.Delivery) error {
	switch EventType(msg.RoutingKey) {
	case QuizInvitation:
		return c.handleQuizInvitation(msg.Body)
	case QuizGraded:
		return c.handleGradedQuiz(msg.Body)
	case UserRegistered:
		return c.handleUserRegistered(msg.Body)
	case PasswordReset:
		return c.handlePasswordReset(msg.Body)
	default:
		log.Printf("Unknown routing key: %s", msg.RoutingKey)
		return nil // ack to avoid requeuing junk
	}
}

func (c *EventConsumer) handleQuizInvitation(body []byte) error {
	var ev QuizInvitationEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("failed to unmarshal quiz invitation event: %w", err)
	}

	subject := fmt.Sprintf("[%s] New quiz: %s", ev.CourseCode, ev.QuizName)
	mailBody := fmt.Sprintf(
		"A new quiz %q has been posted in %s (%s).\n\n"+
			"It opens at %s and closes at %s. Good luck!",
		ev.QuizName, ev.CourseName, ev.CourseCode,
		ev.StartTime.Format(time.RFC1123), ev.EndTime.Format(time.RFC1123))

	// One send per recipient so a single bad address only requeues once.
	for _, email := range ev.Emails {
		if err := c.mailer.Send(subject, mailBody, []string{email}); err != nil {
			return fmt.Errorf("failed to send invitation to %s: %w", email, err)
		}
	}
	log.Printf("Sent quiz invitation for %q to %d recipients", ev.QuizName, len(ev.Emails))
	return nil
}

func (c *EventConsumer) handleGradedQuiz(body []byte) error {
	var ev GradedQuizEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("failed to unmarshal graded quiz event: %w", err)
	}

	subject := fmt.Sprintf("[%s] Grades released: %s", ev.CourseCode, ev.QuizName)
	mailBody := fmt.Sprintf(
		"Hi %s,\n\nYour grade for %q is out: %d / %d.\n\n"+
			"Log in to iQuiz to review your responses.",
		ev.Name, ev.QuizName, ev.Score, ev.MaxScore)

	if err := c.mailer.Send(subject, mailBody, []string{ev.Email}); err != nil {
		return fmt.Errorf("failed to send graded email to %s: %w", ev.Email, err)
	}
	log.Printf("Sent graded quiz email to %s for %q", ev.Email, ev.QuizName)
	return nil
}

func (c *EventConsumer) handleUserRegistered(body []byte) error {
	var ev UserRegisteredEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("failed to unmarshal user registered event: %w", err)
	}

	link := fmt.Sprintf("%s/verify-email?email=%s&code=%s",
		c.feAddress, url.QueryEscape(ev.Email), url.QueryEscape(ev.VerificationCode))
	subject := "Verify your iQuiz account"
	mailBody := fmt.Sprintf(
		"Hi %s,\n\nWelcome to iQuiz. Verify your account at %s\n\n"+
			"Your verification code is %s.",
		ev.Name, link, ev.VerificationCode)

	if err := c.mailer.Send(subject, mailBody, []string{ev.Email}); err != nil {
		return fmt.Errorf("failed to send verification email to %s: %w", ev.Email, err)
	}
	log.Printf("Sent verification email to %s", ev.Email)
	return nil
}

func (c *EventConsumer) handlePasswordReset(body []byte) error {
	var ev PasswordResetEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("failed to unmarshal password reset event: %w", err)
	}

	link := fmt.Sprintf("%s/reset-password?email=%s&code=%s",
		c.feAddress, url.QueryEscape(ev.Email), url.QueryEscape(ev.Code))
	subject := "iQuiz password reset code"
	mailBody := fmt.Sprintf(
		"Hi %s,\n\nReset your password at %s\n\nYour reset code is %s.",
		ev.Name, link, ev.Code)

	if err := c.mailer.Send(subject, mailBody, []string{ev.Email}); err != nil {
		return fmt.Errorf("failed to send password reset email to %s: %w", ev.Email, err)
	}
	return nil
}

func (c *EventConsumer) Close() error {
	if !c.enabled {
		return nil
	}

	close(c.shutdown)
	c.wg.Wait()

	if c.client != nil {
		return c.client.Close()
	}
	return nil
}
