package httpserver

import (
	"encoding/json"
	"errors"

	"lv-simtrade/internal/admin"
	"lv-simtrade/internal/exchange"
	"lv-simtrade/internal/hub"
	"lv-simtrade/internal/protocol"
	"lv-simtrade/internal/types"
)

// WSRouter dispatches inbound envelopes by type. admin-auth always goes to
// the gate; after promotion a connection only sees the admin command set.
type WSRouter struct {
	svc  *exchange.Service
	hub  *hub.Hub
	gate *admin.Gate
}

func NewWSRouter(svc *exchange.Service, h *hub.Hub, gate *admin.Gate) *WSRouter {
	return &WSRouter{svc: svc, hub: h, gate: gate}
}

func (rt *WSRouter) Handle(c *hub.Client, payload []byte) {
	var req protocol.Request
	if err := json.Unmarshal(payload, &req); err != nil {
		c.Send(protocol.NewError("invalid message"))
		return
	}
	switch {
	case req.Type == protocol.TypeAdminAuth:
		rt.gate.Authenticate(c, req.Password, req.Token)
	case c.Role() == hub.RoleAdmin:
		rt.handleAdmin(c, req)
	default:
		rt.handleClient(c, req)
	}
}

func (rt *WSRouter) handleClient(c *hub.Client, req protocol.Request) {
	switch req.Type {
	case protocol.TypeRegister:
		if req.UserID == "" {
			c.Send(protocol.NewError("userId required"))
			return
		}
		snap, _ := rt.svc.Register(req.UserID)
		rt.hub.BindAccount(c, req.UserID)
		c.Send(snap)

	case protocol.TypeDeposit:
		amount, err := req.Amount.Decimal()
		if err != nil {
			c.Send(protocol.NewError("invalid amount"))
			return
		}
		snap, err := rt.svc.Deposit(req.UserID, amount)
		if err != nil {
			rt.sendErr(c, err)
			return
		}
		c.Send(snap)

	case protocol.TypeWithdrawRequest:
		amount, err := req.Amount.Decimal()
		if err != nil {
			c.Send(protocol.NewError("invalid amount"))
			return
		}
		tx, err := rt.svc.RequestWithdrawal(req.UserID, amount, req.Wallet)
		if err != nil {
			rt.sendErr(c, err)
			return
		}
		c.Send(protocol.NewWithdrawRequested(tx.ID))

	case protocol.TypeTrade:
		rt.handleTrade(c, req)

	case protocol.TypeClosePosition:
		// Unknown account or position is a deliberate no-op: the manual
		// close races the auto-close timer and the loser must be silent.
		_, err := rt.svc.Settle(req.UserID, req.PositionID)
		if err != nil && !errors.Is(err, exchange.ErrAccountNotFound) && !errors.Is(err, exchange.ErrPositionNotFound) {
			rt.sendErr(c, err)
		}

	default:
		c.Send(protocol.NewError("unknown command"))
	}
}

func (rt *WSRouter) handleTrade(c *hub.Client, req protocol.Request) {
	direction := types.TradeDirection(req.TradeType)
	if direction != types.TradeDirectionLong && direction != types.TradeDirectionShort {
		c.Send(protocol.NewError("invalid tradeType"))
		return
	}
	amount, err := req.Amount.Decimal()
	if err != nil {
		c.Send(protocol.NewError("invalid amount"))
		return
	}
	leverage, err := parseLeverage(req.Leverage)
	if err != nil {
		c.Send(protocol.NewError("invalid leverage"))
		return
	}
	entryPrice, err := req.EntryPrice.Decimal()
	if err != nil {
		c.Send(protocol.NewError("invalid entryPrice"))
		return
	}
	snap, err := rt.svc.OpenPosition(req.UserID, direction, amount, leverage, entryPrice)
	if err != nil {
		rt.sendErr(c, err)
		return
	}
	c.Send(snap)
}

func (rt *WSRouter) handleAdmin(c *hub.Client, req protocol.Request) {
	switch req.Type {
	case protocol.TypeApproveWithdraw, protocol.TypeRejectWithdraw:
		amount, err := req.Amount.Decimal()
		if err != nil && req.RequestID == "" {
			c.Send(protocol.NewError("invalid amount"))
			return
		}
		approve := req.Type == protocol.TypeApproveWithdraw
		if _, err := rt.svc.DecideWithdrawal(req.UserID, amount, req.RequestID, approve); err != nil {
			rt.sendErr(c, err)
		}

	case protocol.TypeUpdateBalance:
		// Balance has no floor, so any finite decimal is a valid target.
		amount, err := req.Amount.Decimal()
		if err != nil {
			c.Send(protocol.NewError("invalid amount"))
			return
		}
		if _, err := rt.svc.SetBalance(req.UserID, amount); err != nil {
			rt.sendErr(c, err)
		}

	default:
		c.Send(protocol.NewError("unknown admin command"))
	}
}

func parseLeverage(a protocol.Amount) (int64, error) {
	d, err := a.Decimal()
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() || !d.IsPositive() {
		return 0, exchange.ErrInvalidLeverage
	}
	return d.IntPart(), nil
}

func (rt *WSRouter) sendErr(c *hub.Client, err error) {
	c.Send(protocol.NewError(err.Error()))
}
