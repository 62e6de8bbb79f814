package router

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tranvictor/kredits/common"
	"github.com/tranvictor/kredits/metrics"
	"github.com/tranvictor/kredits/networks"
	"github.com/tranvictor/kredits/ui"
	"github.com/tranvictor/kredits/util/addrbook"
	"github.com/tranvictor/kredits/util/explorers"
)

const minListNameWidth = 9

const (
	replyAddressUnauthorized = "Sorry amigo, you're not authorized to manage the address book."
	replySendUnauthorized    = "Sorry amigo, I'm afraid I can not do that."
	replyNotFound            = "not found"
	replyTooMuch             = "oh, that's a bit too much, isn't it?"
	replyExplorerTrouble     = "Sorry, the asset explorer is having trouble right now."
	replyServerTrouble       = "Sorry, the asset server is having trouble right now."
	replyBookTrouble         = "Sorry, I couldn't get to the address book right now."
	replyNotConfigured       = "Sorry, I'm not set up for that. Ask an admin to configure %s."
)

// Message is one line heard in a chat room.
type Message struct {
	User string
	Room string
	Text string
}

// Sender dispatches transfers. *broadcaster.Broadcaster is one.
type Sender interface {
	Send(ctx context.Context, req common.TransferRequest) (common.TransactionReceipt, error)
}

type Settings struct {
	Keyword         string
	AssetID         string
	FromAddress     string
	DefaultQuantity int64
	// empty means ++ is heard in every room
	PlusPlusRooms []string
	Network       networks.Network
}

// Router turns chat messages into address book edits, explorer queries and
// transfers. Explorer and Sender may be nil when they are not configured;
// the commands needing them then reply with a hint.
type Router struct {
	settings Settings
	parser   *Parser
	rooms    map[string]bool

	book     *addrbook.Book
	explorer explorers.AssetExplorer
	sender   Sender
	auth     Authorizer
	limiter  *UserLimiter
	metrics  *metrics.Metrics
	logger   *zap.Logger

	now func() time.Time
}

func New(
	settings Settings,
	book *addrbook.Book,
	explorer explorers.AssetExplorer,
	sender Sender,
	auth Authorizer,
	logger *zap.Logger,
) *Router {
	if settings.DefaultQuantity <= 0 {
		settings.DefaultQuantity = 1
	}
	if settings.Network == nil {
		settings.Network = networks.Mainnet
	}
	if auth == nil {
		auth = AdminList{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	rooms := map[string]bool{}
	for _, room := range settings.PlusPlusRooms {
		if room = strings.TrimSpace(room); room != "" {
			rooms[room] = true
		}
	}
	return &Router{
		settings: settings,
		parser:   NewParser(settings.Keyword),
		rooms:    rooms,
		book:     book,
		explorer: explorer,
		sender:   sender,
		auth:     auth,
		logger:   logger,
		now:      time.Now,
	}
}

// SetRateLimit limits commands that reach external services to perMinute
// per user. 0 turns limiting off.
func (r *Router) SetRateLimit(perMinute int) {
	r.limiter = NewUserLimiter(perMinute, 0)
}

func (r *Router) SetMetrics(m *metrics.Metrics) {
	r.metrics = m
}

func (r *Router) Parser() *Parser {
	return r.parser
}

// Handle parses msg and executes the command in it, if any. Failures of the
// command are replies on u, not errors; Handle only fails when ctx is done.
func (r *Router) Handle(ctx context.Context, msg Message, u ui.UI) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cmd, ok := r.parser.Parse(msg.Text)
	if !ok {
		return nil
	}
	return r.Execute(ctx, msg, cmd, u)
}

// Execute runs an already parsed command on behalf of msg.User in msg.Room.
func (r *Router) Execute(ctx context.Context, msg Message, cmd Command, u ui.UI) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	logger := r.logger.With(
		zap.String("command", cmd.Name()),
		zap.String("user", msg.User),
		zap.String("room", msg.Room),
	)
	logger.Debug("handling command", zap.String("text", msg.Text))

	var outcome string
	switch c := cmd.(type) {
	case AddressAddCommand, AddressRemoveCommand, AddressListCommand, AddressFindCommand:
		outcome = r.address(ctx, logger, msg, c, u)
	case ShowCommand:
		outcome = r.show(ctx, logger, msg, c, u)
	case ListCommand:
		outcome = r.list(ctx, logger, msg, u)
	case SendCommand:
		outcome = r.send(ctx, logger, msg, c, u)
	case IncrementCommand:
		outcome = r.increment(ctx, logger, msg, c)
	default:
		return fmt.Errorf("unsupported command %T", cmd)
	}
	r.metrics.CommandHandled(cmd.Name(), outcome)
	logger.Debug("command handled", zap.String("outcome", outcome))
	return nil
}

func (r *Router) allow(user string) bool {
	return r.limiter.Allow(user, r.now())
}

func (r *Router) throttled(u ui.UI, user string) string {
	u.Warn("slow down, %s", user)
	return metrics.OutcomeThrottled
}

func (r *Router) bookFailed(logger *zap.Logger, u ui.UI, err error) string {
	logger.Error("address book failed", zap.Error(err))
	u.Error(replyBookTrouble)
	return metrics.OutcomeFailed
}

func (r *Router) address(ctx context.Context, logger *zap.Logger, msg Message, cmd Command, u ui.UI) string {
	if !r.auth.IsAdmin(msg.User) {
		u.Warn(replyAddressUnauthorized)
		return metrics.OutcomeUnauthorized
	}

	var (
		lines []string
		err   error
	)
	switch c := cmd.(type) {
	case AddressAddCommand:
		var line string
		line, err = r.book.Add(ctx, c.Nickname, c.Address)
		lines = []string{line}
		if err == nil {
			logger.Info("address book entry added", zap.String("nick", c.Nickname), zap.String("address", c.Address))
		}
	case AddressRemoveCommand:
		var line string
		line, err = r.book.Remove(ctx, c.Nickname)
		lines = []string{line}
		if err == nil {
			logger.Info("address book entry removed", zap.String("nick", c.Nickname))
		}
	case AddressListCommand:
		lines, err = r.book.List(ctx)
	case AddressFindCommand:
		lines, err = r.find(ctx, c.Query)
	}

	var ve *common.ValidationError
	switch {
	case errors.As(err, &ve):
		u.Warn("%s", ve.Message)
		return metrics.OutcomeRejected
	case err != nil:
		return r.bookFailed(logger, u, err)
	}
	for _, line := range lines {
		u.Info("%s", line)
	}
	return metrics.OutcomeOK
}

func (r *Router) find(ctx context.Context, query string) ([]string, error) {
	entries, err := r.book.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return []string{fmt.Sprintf("Nobody in the addressbook matches %q.", query)}, nil
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Nickname
	}
	width := addrbook.MaxWidth(names)
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%s | %s", addrbook.PadRight(e.Nickname, width), e.Address))
	}
	return lines, nil
}

func (r *Router) show(ctx context.Context, logger *zap.Logger, msg Message, c ShowCommand, u ui.UI) string {
	if r.explorer == nil || r.settings.AssetID == "" {
		u.Warn(replyNotConfigured, "ASSET_ID")
		return metrics.OutcomeFailed
	}
	if !r.allow(msg.User) {
		return r.throttled(u, msg.User)
	}

	address, found, err := r.book.LookupAddress(ctx, c.Nickname)
	if err != nil {
		return r.bookFailed(logger, u, err)
	}
	if !found {
		u.Info(replyNotFound)
		return metrics.OutcomeRejected
	}

	stop := u.Spinner("asking the explorer...")
	balance, held, err := r.explorer.GetBalance(ctx, address, r.settings.AssetID)
	stop()
	if err != nil {
		logger.Warn("balance lookup failed", zap.String("nick", c.Nickname), zap.Error(err))
		u.Error(replyExplorerTrouble)
		return metrics.OutcomeFailed
	}
	if !held {
		u.Info(replyNotFound)
		return metrics.OutcomeOK
	}
	u.Info("%s has %d %s", c.Nickname, balance.Total(), r.settings.Keyword)
	return metrics.OutcomeOK
}

func (r *Router) list(ctx context.Context, logger *zap.Logger, msg Message, u ui.UI) string {
	if r.explorer == nil || r.settings.AssetID == "" {
		u.Warn(replyNotConfigured, "ASSET_ID")
		return metrics.OutcomeFailed
	}
	if !r.allow(msg.User) {
		return r.throttled(u, msg.User)
	}

	stop := u.Spinner("asking the explorer...")
	listing, err := r.explorer.ListOwners(ctx, r.settings.AssetID)
	stop()
	if err != nil {
		logger.Warn("owner listing failed", zap.Error(err))
		u.Error(replyExplorerTrouble)
		return metrics.OutcomeFailed
	}

	// only the displayed page is named, so it alone sets the column width
	names := make([]string, len(listing.Owners))
	for i, o := range listing.Owners {
		names[i] = o.Name
	}
	width := addrbook.MaxWidth(names)
	if width < minListNameWidth {
		width = minListNameWidth
	}
	for _, o := range listing.Owners {
		u.Info("%s | %d", addrbook.PadRight(o.Name, width), o.AssetQuantity)
	}
	u.Info("%d %s total, owned by %d addresses. details: %s",
		listing.Total,
		r.settings.Keyword,
		listing.OwnerCount,
		r.settings.Network.AssetOwnersURL(r.settings.AssetID),
	)
	return metrics.OutcomeOK
}

// unknownNick builds the reply for a nickname missing from the book, with
// close matches when there are some.
func (r *Router) unknownNick(ctx context.Context, logger *zap.Logger, nick string) string {
	reply := "sorry, I don't know the address of " + nick
	suggestions, err := r.book.Suggest(ctx, nick)
	if err != nil {
		logger.Debug("no suggestions", zap.Error(err))
		return reply
	}
	if len(suggestions) > 0 {
		reply += fmt.Sprintf(" (did you mean %s?)", strings.Join(suggestions, ", "))
	}
	return reply
}

func (r *Router) transferRequest(to string, quantity int64) common.TransferRequest {
	return common.TransferRequest{
		ID:       uuid.NewString(),
		From:     r.settings.FromAddress,
		To:       to,
		AssetID:  r.settings.AssetID,
		Quantity: quantity,
	}
}

func (r *Router) send(ctx context.Context, logger *zap.Logger, msg Message, c SendCommand, u ui.UI) string {
	if !r.auth.IsAdmin(msg.User) {
		u.Warn(replySendUnauthorized)
		return metrics.OutcomeUnauthorized
	}
	if r.sender == nil {
		u.Warn(replyNotConfigured, "SERVER_URL, ASSET_ID and ASSET_FROM_ADDRESS")
		return metrics.OutcomeFailed
	}
	if !r.allow(msg.User) {
		return r.throttled(u, msg.User)
	}

	destination, found, err := r.book.LookupAddress(ctx, c.Nickname)
	if err != nil {
		return r.bookFailed(logger, u, err)
	}
	if !found {
		u.Warn("%s", r.unknownNick(ctx, logger, c.Nickname))
		return metrics.OutcomeRejected
	}

	quantity := c.Quantity
	if quantity == 0 {
		quantity = r.settings.DefaultQuantity
	}
	req := r.transferRequest(destination, quantity)
	logger.Info("sending",
		zap.String("request_id", req.ID),
		zap.String("nick", c.Nickname),
		zap.Int64("quantity", quantity))

	stop := u.Spinner("talking to the asset server...")
	receipt, err := r.sender.Send(ctx, req)
	stop()

	var (
		exceeded    *common.QuantityExceededError
		invalid     *common.ValidationError
		refused     *common.TransferError
		unreachable *common.TransportError
	)
	switch {
	case err == nil:
		u.Success("OK, done! (transaction should appear soon: %s )", r.settings.Network.TxURL(receipt.Hash))
		return metrics.OutcomeOK
	case errors.As(err, &exceeded):
		logger.Info("quantity exceeds maximum, ignoring", zap.Int64("max", exceeded.Max))
		u.Warn(replyTooMuch)
		return metrics.OutcomeRejected
	case errors.As(err, &invalid):
		u.Warn("%s", invalid.Message)
		return metrics.OutcomeRejected
	case errors.As(err, &refused):
		u.Error("Something is wrong with the asset server: %s", refused.Message)
		return metrics.OutcomeFailed
	case errors.As(err, &unreachable):
		u.Error(replyServerTrouble)
		return metrics.OutcomeFailed
	default:
		logger.Error("transfer failed", zap.Error(err))
		u.Error(replyServerTrouble)
		return metrics.OutcomeFailed
	}
}

// increment never replies; the room only sees the transaction later.
func (r *Router) increment(ctx context.Context, logger *zap.Logger, msg Message, c IncrementCommand) string {
	if len(r.rooms) > 0 && !r.rooms[msg.Room] {
		return metrics.OutcomeRejected
	}
	if !r.auth.IsAdmin(msg.User) {
		return metrics.OutcomeUnauthorized
	}
	if r.sender == nil {
		return metrics.OutcomeFailed
	}
	if !r.allow(msg.User) {
		return metrics.OutcomeThrottled
	}

	destination, found, err := r.book.LookupAddress(ctx, c.Nickname)
	if err != nil {
		logger.Error("address book failed", zap.Error(err))
		return metrics.OutcomeFailed
	}
	if !found {
		return metrics.OutcomeRejected
	}

	req := r.transferRequest(destination, r.settings.DefaultQuantity)
	receipt, err := r.sender.Send(ctx, req)
	if err != nil {
		logger.Warn("increment transfer failed",
			zap.String("request_id", req.ID),
			zap.String("nick", c.Nickname),
			zap.Error(err))
		return metrics.OutcomeFailed
	}
	logger.Info("increment sent",
		zap.String("request_id", req.ID),
		zap.String("nick", c.Nickname),
		zap.String("hash", receipt.Hash))
	return metrics.OutcomeOK
}
