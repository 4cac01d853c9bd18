package services

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used throughout the application, particularly in the handlers.
type ServiceContainer struct {
	Register RegisterSvcFacade
	Payment  PaymentSvcFacade
	Expense  ExpenseSvcFacade
}

// EventTracker receives product analytics events about register activity.
type EventTracker interface {
	Enqueue(distinctID string, event string, properties map[string]any)
}
