package event

import (
	"context"
	"log"
	"time"
)

// Publisher is the notification fan-out used by the services. Every send is
// an event on the bus; the email worker turns events into SMTP sends, so a
// slow recipient never blocks a request.
type Publisher interface {
	PublishQuizInvitation(ctx context.Context, courseCode, courseName, quizName string, start, end time.Time, emails []string) error
	PublishGradedQuiz(ctx context.Context, email, name, quizName, courseCode string, score, maxScore int) error
	PublishUserRegistered(ctx context.Context, userID, name, email, verificationCode string) error
	PublishPasswordReset(ctx context.Context, email, name, code string) error
	Close() error
}

type EventPublisher struct {
	rabbitMQ *RabbitMQClient
	enabled  bool
}

func NewEventPublisher(rabbitURI, exchange, queueName string) (*EventPublisher, error) {
	if rabbitURI == "" {
		log.Println("Warning: RabbitMQ URI is empty, event publishing is disabled")
		return &EventPublisher{enabled: false}, nil
	}

	client, err := NewRabbitMQClient(rabbitURI, exchange, queueName)
	if err != nil {
		return nil, err
	}

	if err := client.setupExchangeAndQueue(); err != nil {
		client.Close()
		return nil, err
	}

	return &EventPublisher{rabbitMQ: client, enabled: true}, nil
}

func (p *EventPublisher) PublishQuizInvitation(ctx context.Context, courseCode, courseName, quizName string, start, end time.Time, emails []string) error {
	if !p.enabled {
		log.Println("Event publishing is disabled, skipping QuizInvitation")
		return nil
	}
	if len(emails) == 0 {
		return nil
	}

	body, err := NewQuizInvitationEvent(courseCode, courseName, quizName, start, end, emails).ToJSON()
	if err != nil {
		return err
	}
	if err := p.rabbitMQ.PublishEvent(string(QuizInvitation), body); err != nil {
		return err
	}

	log.Printf("Published QuizInvitation event for quiz %s to %d recipients", quizName, len(emails))
	return nil
}

func (p *EventPublisher) PublishGradedQuiz(ctx context.Context, email, name, quizName, courseCode string, score, maxScore int) error {
	if !p.enabled {
		log.Println("Event publishing is disabled, skipping GradedQuiz")
		return nil
	}

	body, err := NewGradedQuizEvent(email, name, quizName, courseCode, score, maxScore).ToJSON()
	if err != nil {
		return err
	}
	if err := p.rabbitMQ.PublishEvent(string(QuizGraded), body); err != nil {
		return err
	}

	log.Printf("Published GradedQuiz event for %s on quiz %s", email, quizName)
	return nil
}

func (p *EventPublisher) PublishUserRegistered(ctx context.Context, userID, name, email, verificationCode string) error {
	if !p.enabled {
		log.Println("Event publishing is disabled, skipping UserRegistered")
		return nil
	}

	body, err := NewUserRegisteredEvent(userID, name, email, verificationCode).ToJSON()
	if err != nil {
		return err
	}
	if err := p.rabbitMQ.PublishEvent(string(UserRegistered), body); err != nil {
		return err
	}

	log.Printf("Published UserRegistered event for user ID: %s", userID)
	return nil
}

func (p *EventPublisher) PublishPasswordReset(ctx context.Context, email, name, code string) error {
	if !p.enabled {
		log.Println("Event publishing is disabled, skipping PasswordReset")
		return nil
	}

	body, err := NewPasswordResetEvent(email, name, code).ToJSON()
	if err != nil {
		return err
	}
	return p.rabbitMQ.PublishEvent(string(PasswordReset), body)
}

func (p *EventPublisher) Close() error {
	if !p.enabled || p.rabbitMQ == nil {
		return nil
	}
	return p.rabbitMQ.Close()
}
