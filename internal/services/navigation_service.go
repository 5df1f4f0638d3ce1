package services

import (
	"sidequest_portal/internal/services/dto"
	"sidequest_portal/internal/store"
)

// NavigationService - состояние оболочки страницы. В backend не ходит.
type NavigationService interface {
	Apply(sc *Scope, req *dto.NavigationRequest) store.NavigationState
	Current(sc *Scope) store.NavigationState
	Visit(sc *Scope, page string)
}

type navigationService struct{}

func NewNavigationService() NavigationService {
	return &navigationService{}
}

func (s *navigationService) Apply(sc *Scope, req *dto.NavigationRequest) store.NavigationState {
	action := store.NavAction{
		Type: store.NavActionType(req.Action),
		Page: req.Page,
		Tab:  req.Tab,
	}
	sc.State.Update(func(st store.State) store.State {
		st.Navigation = store.ReduceNavigation(st.Navigation, action)
		return st
	})
	return sc.State.Snapshot().Navigation
}

func (s *navigationService) Current(sc *Scope) store.NavigationState {
	return sc.State.Snapshot().Navigation
}

// Visit запоминает текущую страницу при открытии page-маршрута
func (s *navigationService) Visit(sc *Scope, page string) {
	if sc.State.Snapshot().Navigation.CurrentPage == page {
		return
	}
	sc.State.Update(func(st store.State) store.State {
		st.Navigation = store.ReduceNavigation(st.Navigation, store.NavAction{Type: store.NavSetPage, Page: page})
		return st
	})
}
