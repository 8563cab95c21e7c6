package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/opschat/icinga-chatops/internal/adapter/dto"
	"github.com/opschat/icinga-chatops/internal/domain/entity"
	"github.com/opschat/icinga-chatops/internal/domain/repository"
	"github.com/opschat/icinga-chatops/internal/timeparse"
)

// confirmationObjectLimit caps how many target names the confirmation
// summary lists before switching to a "... and N more" suffix.
const confirmationObjectLimit = 10

// minEndDateLead is how far in the future an end date must lie at
// confirmation time.
const minEndDateLead = 60 * time.Second

// ConverseUseCase drives the multi-turn conversation that collects all
// parameters of an acknowledgement or downtime. Each message advances the
// conversation field by field in a fixed order: command, filter, filter
// result, start date (downtime only), end date, description, confirmation.
type ConverseUseCase struct {
	store      repository.ConversationStore
	resolver   *ResolveFilterUseCase
	dispatcher *DispatchUseCase
	logger     *slog.Logger
	now        func() time.Time
}

// NewConverseUseCase creates a new conversation use case.
func NewConverseUseCase(
	store repository.ConversationStore,
	resolver *ResolveFilterUseCase,
	dispatcher *DispatchUseCase,
	logger *slog.Logger,
) *ConverseUseCase {
	return &ConverseUseCase{
		store:      store,
		resolver:   resolver,
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// Process advances the user's conversation with one chat message and returns
// the next response: a question for the missing field, the confirmation
// summary, or the dispatch outcome. The per-user lock is held for the whole
// step so concurrent messages from the same user cannot interleave.
func (uc *ConverseUseCase) Process(ctx context.Context, userID, author, message string) (*dto.ChatResponse, error) {
	if userID == "" || strings.TrimSpace(message) == "" {
		return dto.NewErrorResponse("Internal error", "conversation invoked without a message or user id"), nil
	}

	unlock := uc.store.Lock(userID)
	defer unlock()

	conv, err := uc.store.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading conversation: %w", err)
	}

	tokens := strings.Fields(message)
	tokens, errResp := uc.fill(ctx, conv, tokens)
	if errResp != nil {
		// A backend failure aborts only the resolution step; progress
		// made so far stays in the store.
		if putErr := uc.store.Put(ctx, userID, conv); putErr != nil {
			uc.logger.Error("saving conversation", "user_id", userID, "error", putErr)
		}
		return errResp, nil
	}

	return uc.respond(ctx, conv, tokens, author)
}

// fill consumes tokens into unset conversation fields in order and returns
// the unconsumed remainder. A non-nil response means object resolution hit a
// backend error.
func (uc *ConverseUseCase) fill(ctx context.Context, conv *entity.Conversation, tokens []string) ([]string, *dto.ChatResponse) {
	if !conv.HasCommand() && len(tokens) > 0 {
		// Intent classification lowercases too, so a capitalized command
		// word must still match here.
		command := strings.ToLower(tokens[0])
		switch {
		case strings.HasPrefix(command, "ack"):
			conv.Command = entity.CommandAcknowledge
		case strings.HasPrefix(command, "dt"), strings.HasPrefix(command, "downtime"):
			conv.Command = entity.CommandDowntime
		default:
			return tokens, nil
		}
		uc.logger.Debug("command parsed", "user_id", conv.UserID, "command", conv.Command.String())
		tokens = tokens[1:]
	}

	if !conv.HasFilter() && len(tokens) > 0 {
		filter := []string{tokens[0]}
		tokens = tokens[1:]
		// Take a second token for host+service filters, but never a
		// reserved date keyword.
		if len(tokens) > 0 && !reservedWord(tokens[0]) {
			filter = append(filter, tokens[0])
			tokens = tokens[1:]
		}
		conv.Filter = filter
		uc.logger.Debug("filter parsed", "user_id", conv.UserID, "filter", filter)
	}

	if conv.HasFilter() && conv.FilterResult == nil {
		objects, objectType, err := uc.resolver.Resolve(ctx, conv.Command, conv.Filter)
		if err != nil {
			uc.logger.Error("object resolution failed", "user_id", conv.UserID, "error", err)
			return tokens, dto.NewErrorResponse(
				"Icinga request error while trying to find matching hosts/services",
				err.Error(),
			)
		}
		if len(objects) > 0 {
			// Immutable once set.
			conv.FilterResult = objects
			conv.ObjectType = objectType
		}
	}

	if conv.Command == entity.CommandDowntime && !conv.HasStartDate() {
		tokens = uc.parseStartDate(conv, tokens)
	}

	if !conv.HasEndDate() {
		tokens = uc.parseEndDate(conv, tokens)
	}

	if !conv.HasDescription() && len(tokens) > 0 {
		if text := strings.TrimSpace(strings.Join(tokens, " ")); text != "" {
			conv.Description = text
			tokens = nil
		}
	}

	return tokens, nil
}

// parseStartDate extracts the downtime start from the token buffer. The date
// text runs from after a literal "from" (if present) up to a literal "until"
// (if present) or the end of the buffer.
func (uc *ConverseUseCase) parseStartDate(conv *entity.Conversation, tokens []string) []string {
	if len(tokens) == 0 {
		return tokens
	}

	if i := indexOf(tokens, "from"); i >= 0 {
		tokens = tokens[i+1:]
	}

	untilIdx := indexOf(tokens, "until")
	var dateText string
	if untilIdx >= 0 {
		dateText = strings.Join(tokens[:untilIdx], " ")
		tokens = tokens[untilIdx:]
	} else {
		dateText = strings.Join(tokens, " ")
	}
	if strings.TrimSpace(dateText) == "" {
		return tokens
	}

	result, err := timeparse.Parse(dateText, uc.now())
	if err != nil {
		conv.StartDateParseFailed = dateText
		if untilIdx < 0 {
			tokens = nil
		}
		return tokens
	}

	conv.StartDate = result.Time
	conv.StartDateParseFailed = ""
	if untilIdx < 0 {
		// Recover whatever trailed the consumed date expression.
		tokens = strings.Fields(dateText[result.Consumed:])
	}
	return tokens
}

// parseEndDate extracts the end date, recognizing the "never"/"infinite"
// sentinel as a single-token no-expiry marker.
func (uc *ConverseUseCase) parseEndDate(conv *entity.Conversation, tokens []string) []string {
	if len(tokens) == 0 {
		return tokens
	}

	if i := indexOf(tokens, "until"); i >= 0 {
		tokens = tokens[i+1:]
	}
	if len(tokens) == 0 {
		return tokens
	}

	if tokens[0] == "never" || tokens[0] == "infinite" {
		conv.EndNever = true
		conv.EndDateParseFailed = ""
		return tokens[1:]
	}

	dateText := strings.Join(tokens, " ")
	result, err := timeparse.Parse(dateText, uc.now())
	if err != nil {
		conv.EndDateParseFailed = dateText
		return nil
	}

	conv.EndDate = result.Time
	conv.EndDateParseFailed = ""
	return strings.Fields(dateText[result.Consumed:])
}

// respond asks for the first still-missing field, validates the collected
// dates, runs the confirmation exchange and finally hands off to the
// dispatcher.
func (uc *ConverseUseCase) respond(ctx context.Context, conv *entity.Conversation, tokens []string, author string) (*dto.ChatResponse, error) {
	userID := conv.UserID
	save := func() {
		if err := uc.store.Put(ctx, userID, conv); err != nil {
			uc.logger.Error("saving conversation", "user_id", userID, "error", err)
		}
	}

	if !conv.HasFilter() {
		save()
		if conv.Command == entity.CommandAcknowledge {
			return dto.NewResponse("What do you want acknowledge?"), nil
		}
		return dto.NewResponse("What do you want to set a downtime for?"), nil
	}

	if !conv.HasFilterResult() {
		problematic := ""
		if conv.Command == entity.CommandAcknowledge {
			problematic = " problematic"
		}
		text := fmt.Sprintf("Sorry, I was not able to find any%s hosts or services for your search '%s'. Try again.",
			problematic, strings.Join(conv.Filter, " "))
		conv.Filter = nil
		save()
		return dto.NewResponse(text), nil
	}

	if conv.Command == entity.CommandDowntime && !conv.HasStartDate() {
		save()
		if conv.StartDateParseFailed != "" {
			return dto.NewResponse(fmt.Sprintf("Sorry, I was not able to understand the start date '%s'. Try again please.",
				conv.StartDateParseFailed)), nil
		}
		return dto.NewResponse("When should the downtime start?"), nil
	}

	if !conv.HasEndDate() {
		save()
		if conv.EndDateParseFailed != "" {
			return dto.NewResponse(fmt.Sprintf("Sorry, I was not able to understand the end date '%s'. Try again please.",
				conv.EndDateParseFailed)), nil
		}
		if conv.Command == entity.CommandAcknowledge {
			return dto.NewResponse("When should the acknowledgement expire? Or never?"), nil
		}
		return dto.NewResponse("When should the downtime end?"), nil
	}

	// A downtime needs a concrete window; "never" only makes sense for
	// acknowledgement expiry.
	if conv.Command == entity.CommandDowntime && conv.EndNever {
		conv.ClearEndDate()
		save()
		return dto.NewResponse("Sorry, a downtime needs a fixed end date. When should the downtime end?"), nil
	}

	if !conv.EndNever && conv.EndDate.Before(uc.now().Add(minEndDateLead)) {
		text := fmt.Sprintf("Sorry, end date '%s' lies (almost) in the past. Please define a valid end/expire date.",
			formatDate(conv.EndDate))
		conv.ClearEndDate()
		save()
		return dto.NewResponse(text), nil
	}

	if conv.Command == entity.CommandDowntime && conv.StartDate.After(conv.EndDate) {
		text := fmt.Sprintf("Sorry, start date '%s' can't be after end date '%s'. When should the downtime start?",
			formatDate(conv.StartDate), formatDate(conv.EndDate))
		conv.ClearStartDate()
		save()
		return dto.NewResponse(text), nil
	}

	if !conv.HasDescription() {
		save()
		return dto.NewResponse("Please add a comment."), nil
	}

	if !conv.Confirmed && !conv.Canceled {
		if conv.ConfirmationSent {
			switch {
			case len(tokens) > 0 && strings.HasPrefix(strings.ToLower(tokens[0]), "y"):
				conv.Confirmed = true
			case len(tokens) > 0 && strings.HasPrefix(strings.ToLower(tokens[0]), "n"):
				conv.Canceled = true
			default:
				// Anything else replays the same summary.
				conv.ConfirmationSent = false
			}
		}

		if !conv.ConfirmationSent {
			conv.ConfirmationSent = true
			save()
			return uc.confirmationSummary(conv), nil
		}
	}

	if conv.Canceled {
		if err := uc.store.Delete(ctx, userID); err != nil {
			uc.logger.Error("deleting conversation", "user_id", userID, "error", err)
		}
		return dto.NewResponse("Ok, action has been canceled!"), nil
	}

	// Confirmed: the conversation is deleted before the backend call is
	// issued. A failed dispatch does not resume it.
	if err := uc.store.Delete(ctx, userID); err != nil {
		uc.logger.Error("deleting conversation", "user_id", userID, "error", err)
	}
	return uc.dispatcher.Execute(ctx, conv, author)
}

// confirmationSummary renders the pending action for the yes/no prompt.
func (uc *ConverseUseCase) confirmationSummary(conv *entity.Conversation) *dto.ChatResponse {
	lines := []string{
		fmt.Sprintf(">*Command*: %s", conv.Command),
		fmt.Sprintf(">*Type*: %s", conv.ObjectType),
	}

	if conv.Command == entity.CommandDowntime {
		lines = append(lines,
			fmt.Sprintf(">*Start*: %s", formatDate(conv.StartDate)),
			fmt.Sprintf(">*End*: %s", formatDate(conv.EndDate)),
		)
	} else {
		expire := "Never"
		if !conv.EndNever {
			expire = formatDate(conv.EndDate)
		}
		lines = append(lines, fmt.Sprintf(">*Expire*: %s", expire))
	}

	lines = append(lines,
		fmt.Sprintf(">*Comment*: %s", conv.Description),
		">*Objects*:",
	)

	for i, obj := range conv.FilterResult {
		if i == confirmationObjectLimit {
			lines = append(lines, fmt.Sprintf(">\t... and %d more", len(conv.FilterResult)-confirmationObjectLimit))
			break
		}
		lines = append(lines, ">\t• "+obj.DisplayName())
	}

	resp := dto.NewResponse("Confirm your action")
	resp.AddBlock(strings.Join(lines, "\n"))
	resp.AddBlock("Do you want to confirm this action?:")
	return resp
}

// reservedWord reports whether a token belongs to the date grammar and must
// not be consumed as a filter token.
func reservedWord(token string) bool {
	switch token {
	case "from", "until", "never", "infinite":
		return true
	}
	return false
}

func indexOf(tokens []string, want string) int {
	for i, t := range tokens {
		if t == want {
			return i
		}
	}
	return -1
}
