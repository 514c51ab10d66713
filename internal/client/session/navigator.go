package session

import "context"

// Route names a client-side view the manager can send the user to.
type Route string

const (
	RouteLogin               Route = "/login"
	RouteDashboard           Route = "/dashboard"
	RouteRegistrationSuccess Route = "/registration-success"
)

// Navigator switches the visible view. It is called after the state change
// it reflects has been committed, never with the manager's lock held.
type Navigator interface {
	Navigate(ctx context.Context, route Route)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, route Route)

func (f NavigatorFunc) Navigate(ctx context.Context, route Route) {
	f(ctx, route)
}

type nopNavigator struct{}

func (nopNavigator) Navigate(context.Context, Route) {}
