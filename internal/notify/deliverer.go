package notify

import (
	"context"
	"strconv"

	"stella-settlement-api/internal/constant"
	"stella-settlement-api/internal/dto"
	"stella-settlement-api/internal/metrics"
)

// Mailer 由 MarketingClient 实现
type Mailer interface {
	SendTransactional(ctx context.Context, template, email string, vars map[string]string) error
}

// Deliverer 通知任务 -> 邮件模板
type Deliverer struct {
	mailer    Mailer
	templates map[string]string
	metrics   *metrics.Metrics
}

func NewDeliverer(m Mailer, sellerSaleTpl, orderConfirmTpl string, mt *metrics.Metrics) *Deliverer {
	return &Deliverer{
		mailer: m,
		templates: map[string]string{
			dto.NotifySellerSale:     sellerSaleTpl,
			dto.NotifyOrderConfirmed: orderConfirmTpl,
		},
		metrics: mt,
	}
}

func (d *Deliverer) Deliver(ctx context.Context, job dto.NotifyJob) error {
	tpl, ok := d.templates[job.Kind]
	if !ok || tpl == "" {
		d.metrics.ObserveNotification(job.Kind, "skipped")
		return constant.Errorf(constant.CodeNotifyFailed, "no template for %s", job.Kind)
	}
	if job.Email == "" {
		d.metrics.ObserveNotification(job.Kind, "skipped")
		return constant.Errorf(constant.CodeNotifyFailed, "no recipient for %s order %d", job.Kind, job.OrderID)
	}

	vars := make(map[string]string, len(job.Variables)+3)
	for k, v := range job.Variables {
		vars[k] = v
	}
	vars["order_id"] = strconv.FormatUint(job.OrderID, 10)
	vars["store_id"] = job.StoreID
	if job.Name != "" {
		vars["name"] = job.Name
	}

	if err := d.mailer.SendTransactional(ctx, tpl, job.Email, vars); err != nil {
		d.metrics.ObserveNotification(job.Kind, "failed")
		return constant.Wrapf(constant.CodeNotifyFailed, err, "send %s failed", job.Kind)
	}
	d.metrics.ObserveNotification(job.Kind, "ok")
	return nil
}
