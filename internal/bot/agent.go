package bot

import (
	"errors"
	"slices"

	"chinchon/internal/app"
	"chinchon/internal/domain"
)

// Agent represents an autonomous bot player.
type Agent struct {
	ID       string
	Name     string
	Strategy Brain
}

// TakeTurn plays a whole turn for the agent: it draws when holding seven cards and then
// either closes or throws a card. A close the rules reject falls back to a discard of the
// same card. The returned events are not fed back to the agent; callers deliver them
// through OnGameEvent like any other event.
func (a *Agent) TakeTurn(svc *app.Service, match *domain.Match) ([]app.Event, error) {
	pl, ok := match.Player(a.ID)
	if !ok {
		return nil, app.ErrUnknownPlayer
	}
	if !pl.IsTurn() {
		return nil, domain.ErrNotYourTurn
	}

	var events []app.Event
	if len(pl.Hand()) < domain.TurnHandSize {
		drawn, err := a.draw(svc, match, pl)
		if err != nil {
			return nil, err
		}
		events = append(events, drawn...)
	}

	finish := a.Strategy.ChooseFinish(a.view(match, pl))
	if finish.Close {
		card := finish.Card
		closed, err := svc.Close(match, a.ID, &card)
		if err == nil {
			return append(events, closed...), nil
		}
		if !errors.Is(err, domain.ErrScoreTooHigh) {
			return events, err
		}
	}

	discarded, err := svc.Discard(match, a.ID, finish.Card)
	if err != nil {
		return events, err
	}
	return append(events, discarded...), nil
}

func (a *Agent) draw(svc *app.Service, match *domain.Match, pl *domain.Player) ([]app.Event, error) {
	pile := a.Strategy.ChoosePile(a.view(match, pl))
	events, err := svc.Draw(match, a.ID, pile)
	if errors.Is(err, domain.ErrNoDiscardsAvailable) {
		other := domain.PileDraw
		if pile == domain.PileDraw {
			other = domain.PileDiscard
		}
		events, err = svc.Draw(match, a.ID, other)
	}
	return events, err
}

func (a *Agent) view(match *domain.Match, pl *domain.Player) View {
	view := View{
		Hand:     pl.Hand(),
		Score:    pl.Score(),
		CanClose: pl.CanClose,
	}
	if top, ok := match.TopDiscard(); ok {
		view.TopDiscard = &top
	}
	return view
}

// OnGameEvent notifies the agent of a game event. Private events addressed to other
// players are ignored.
func (a *Agent) OnGameEvent(event app.Event) {
	if len(event.Recipients) > 0 && !slices.Contains(event.Recipients, a.ID) {
		return
	}
	a.Strategy.OnEvent(event)
}
