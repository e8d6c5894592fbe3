package background

import (
	"context"
	"encoding/json"
	"time"

	"github.com/LavaJover/shvark-commission-service/internal/domain"
	"github.com/cenkalti/backoff/v4"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type SalaryAccruer interface {
	AccrueSalaries(ctx context.Context, date time.Time) (int, error)
}

type GraphRefresher interface {
	Refresh(ctx context.Context) error
}

type BackgroundTasks struct {
	Salary          SalaryAccruer
	Graph           GraphRefresher
	Revenue         RevenueHandler
	Subscriber      domain.SubscriberPort
	SalarySchedule  string
	RefreshInterval time.Duration
	RevenueTopic    string
	GroupID         string
	// первая пауза перед повтором события выручки; 0 - значение backoff по умолчанию
	RetryInterval   time.Duration
	Location        *time.Location
	Logger          *zap.Logger

	cron *cron.Cron
}

func (bt *BackgroundTasks) StartAll(ctx context.Context) error {
	if err := bt.startSalaryAccrual(ctx); err != nil {
		return err
	}
	go bt.startGraphRefresh(ctx)
	if bt.Subscriber != nil && bt.Revenue != nil {
		go bt.consumeRevenueEvents(ctx)
	}
	return nil
}

// Stop дожидается завершения запущенной задачи cron
func (bt *BackgroundTasks) Stop() {
	if bt.cron != nil {
		<-bt.cron.Stop().Done()
	}
}

func (bt *BackgroundTasks) startSalaryAccrual(ctx context.Context) error {
	loc := bt.Location
	if loc == nil {
		loc = time.UTC
	}
	bt.cron = cron.New(cron.WithLocation(loc))
	_, err := bt.cron.AddFunc(bt.SalarySchedule, func() {
		date := time.Now().In(loc)
		accrued, err := bt.Salary.AccrueSalaries(ctx, date)
		if err != nil {
			bt.Logger.Error("salary accrual finished with errors", zap.Int("accrued", accrued), zap.Error(err))
			return
		}
		bt.Logger.Info("salary accrual finished", zap.Int("accrued", accrued), zap.String("date", date.Format(time.DateOnly)))
	})
	if err != nil {
		return err
	}
	bt.cron.Start()
	return nil
}

func (bt *BackgroundTasks) startGraphRefresh(ctx context.Context) {
	if bt.RefreshInterval <= 0 {
		return
	}
	ticker := time.NewTicker(bt.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := bt.Graph.Refresh(ctx); err != nil {
				bt.Logger.Warn("graph refresh failed", zap.Error(err))
			}
		}
	}
}

// RevenueHandler - обработчик событий выручки из очереди
type RevenueHandler func(ctx context.Context, event domain.RevenueEvent) error

func (bt *BackgroundTasks) consumeRevenueEvents(ctx context.Context) {
	msgs, err := bt.Subscriber.Subscribe(ctx, bt.RevenueTopic, bt.GroupID)
	if err != nil {
		bt.Logger.Error("failed to subscribe to revenue events", zap.String("topic", bt.RevenueTopic), zap.Error(err))
		return
	}
	for msg := range msgs {
		if !bt.handleRevenueMessage(ctx, msg) {
			return
		}
	}
}

// handleRevenueMessage обрабатывает сообщение и подтверждает его.
// Ошибка домена окончательна, инфраструктурные ошибки повторяются до успеха или отмены ctx.
// false - ctx отменен, сообщение осталось неподтвержденным
func (bt *BackgroundTasks) handleRevenueMessage(ctx context.Context, msg domain.Message) bool {
	var event domain.RevenueEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		bt.Logger.Warn("malformed revenue event skipped", zap.ByteString("key", msg.Key), zap.Error(err))
		return bt.ack(ctx, msg)
	}

	policy := backoff.NewExponentialBackOff()
	if bt.RetryInterval > 0 {
		policy.InitialInterval = bt.RetryInterval
	}
	policy.MaxElapsedTime = 0

	err := backoff.RetryNotify(func() error {
		err := bt.Revenue(ctx, event)
		if err != nil && domain.KindOf(err) != "" {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(policy, ctx), func(err error, wait time.Duration) {
		bt.Logger.Warn("revenue event failed, retrying",
			zap.String("key", event.Key()),
			zap.Duration("wait", wait),
			zap.Error(err))
	})
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		bt.Logger.Error("revenue event rejected",
			zap.String("key", event.Key()),
			zap.String("type", string(event.Type)),
			zap.Error(err))
	}
	return bt.ack(ctx, msg)
}

func (bt *BackgroundTasks) ack(ctx context.Context, msg domain.Message) bool {
	if err := msg.Commit(ctx); err != nil {
		bt.Logger.Error("failed to commit revenue event", zap.ByteString("key", msg.Key), zap.Error(err))
		return ctx.Err() == nil
	}
	return true
}
