package upstream

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"stella-settlement-api/internal/constant"
	"stella-settlement-api/internal/dto"
)

// Gateway 资金划转，不做本地重试，失败直接交给调用方
type Gateway struct {
	provider Provider
	log      logrus.FieldLogger
}

func NewGateway(p Provider, log logrus.FieldLogger) *Gateway {
	return &Gateway{provider: p, log: log}
}

// Transfer 返回平台转账ID
func (g *Gateway) Transfer(ctx context.Context, req dto.TransferRequest) (string, error) {
	if req.AmountMinor <= 0 {
		return "", constant.Errorf(constant.CodeInvalidTransferAmount, "transfer amount must be a positive number of minor units, got %d", req.AmountMinor)
	}
	if strings.TrimSpace(req.DestinationAccountID) == "" {
		return "", constant.Errorf(constant.CodeInvalidDestination, "transfer destination account required")
	}
	if len(req.Currency) != 3 {
		return "", constant.Errorf(constant.CodeSettlementCurrency, "invalid currency %q", req.Currency)
	}

	id, err := g.provider.CreateTransfer(ctx, req)
	if err != nil {
		// 余额不足、收款账户无效原样返回，其余统一归为转账失败
		if constant.IsKind(err, constant.KindInsufficientFunds) || constant.IsKind(err, constant.KindInvalidDestination) {
			return "", err
		}
		return "", constant.Wrap(constant.CodeTransferFailed, err)
	}
	g.log.WithFields(logrus.Fields{
		"transfer_id":    id,
		"destination":    req.DestinationAccountID,
		"amount_minor":   req.AmountMinor,
		"transfer_group": req.TransferGroup,
	}).Info("[Gateway] transfer created")
	return id, nil
}
