package service

import (
	"context"
	"time"

	"ovation/internal/errors"
	"ovation/internal/logger"
	"ovation/internal/models"
	"ovation/internal/pricing"
)

// EventService manages the event catalog: admin creation, browsing with text
// search, and per-event sales analytics.
type EventService struct {
	catalog   EventCatalog
	inventory InventoryStore
	tickets   TicketStore
	searcher  Searcher
	publisher Publisher
}

func NewEventService(catalog EventCatalog, inventory InventoryStore, tickets TicketStore, searcher Searcher, publisher Publisher) *EventService {
	return &EventService{
		catalog:   catalog,
		inventory: inventory,
		tickets:   tickets,
		searcher:  searcher,
		publisher: publisher,
	}
}

// Create validates and stores a new event with its inventory tiers and sale
// phases, then indexes it for search.
func (s *EventService) Create(ctx context.Context, ownerID int64, req *models.CreateEventRequest) (*models.CreateEventResponse, error) {
	seen := make(map[string]bool, len(req.TicketTypes))
	for _, tt := range req.TicketTypes {
		if !models.IsValidTicketType(tt.Name) {
			return nil, errors.InvalidArgument("unrecognized ticket type: " + tt.Name)
		}
		if seen[tt.Name] {
			return nil, errors.InvalidArgument("duplicate ticket type: " + tt.Name)
		}
		seen[tt.Name] = true
		if tt.Quantity <= 0 {
			return nil, errors.InvalidArgument("ticket type quantity must be positive: " + tt.Name)
		}
		if tt.Price.IsNegative() {
			return nil, errors.InvalidArgument("ticket type price must not be negative: " + tt.Name)
		}
	}

	for _, phase := range req.SalePhases {
		if phase.DiscountPercent < 0 || phase.DiscountPercent > 100 {
			return nil, errors.InvalidArgument("discount percent must be between 0 and 100: " + phase.PhaseName)
		}
		if !phase.EndDate.After(phase.StartDate) {
			return nil, errors.InvalidArgument("sale phase must end after it starts: " + phase.PhaseName)
		}
	}

	event := &models.Event{
		OwnerID:     ownerID,
		Title:       req.Title,
		Description: req.Description,
		OrganizedBy: req.OrganizedBy,
		EventDate:   req.EventDate,
		EventTime:   req.EventTime,
		Location:    req.Location,
		Image:       req.Image,
		TicketPrice: req.TicketPrice,
		Approved:    true,
	}
	for _, tt := range req.TicketTypes {
		event.TicketTypes = append(event.TicketTypes, models.TicketType{
			Name:              tt.Name,
			UnitPrice:         tt.Price,
			QuantityAvailable: tt.Quantity,
		})
	}
	for _, phase := range req.SalePhases {
		event.SalePhases = append(event.SalePhases, models.SalePhase{
			PhaseName:       phase.PhaseName,
			StartDate:       phase.StartDate,
			EndDate:         phase.EndDate,
			DiscountPercent: phase.DiscountPercent,
		})
	}

	if err := s.catalog.Create(ctx, event); err != nil {
		return nil, errors.Internal("failed to create event", err)
	}

	if s.searcher != nil {
		if err := s.searcher.IndexEvent(ctx, event); err != nil {
			logger.WithContext(ctx).Error("Failed to index event for search",
				"error", err,
				"event_id", event.ID)
		}
	}

	if err := s.publisher.Publish(models.EventEventCreated, models.EventCreatedEvent{
		EventID:   event.ID,
		Title:     event.Title,
		Timestamp: time.Now(),
	}); err != nil {
		logger.WithContext(ctx).Error("Failed to publish event created event",
			"error", err,
			"event_id", event.ID,
			"event_type", models.EventEventCreated)
	}

	return &models.CreateEventResponse{ID: event.ID}, nil
}

// List returns a page of approved events. A non-empty query goes through the
// search index first; search failures fall back to the catalog store so
// browsing keeps working when Elasticsearch is down.
func (s *EventService) List(ctx context.Context, query string, page, pageSize int) (models.ListEventsResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	if query != "" && s.searcher != nil {
		items, err := s.listFromSearch(ctx, query, page, pageSize)
		if err == nil {
			return items, nil
		}
		logger.WithContext(ctx).Warn("Search unavailable, falling back to catalog store",
			"error", err,
			"query", query)
	}

	events, err := s.catalog.List(ctx, query, page, pageSize)
	if err != nil {
		return nil, errors.Internal("failed to list events", err)
	}

	items := make(models.ListEventsResponse, 0, len(events))
	for _, e := range events {
		items = append(items, listItem(&e))
	}
	return items, nil
}

func (s *EventService) listFromSearch(ctx context.Context, query string, page, pageSize int) (models.ListEventsResponse, error) {
	ids, err := s.searcher.SearchEvents(ctx, query, page, pageSize)
	if err != nil {
		return nil, err
	}

	items := make(models.ListEventsResponse, 0, len(ids))
	for _, id := range ids {
		event, err := s.catalog.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if event == nil || !event.Approved {
			// Stale search document, the store is authoritative.
			continue
		}
		items = append(items, listItem(event))
	}
	return items, nil
}

func listItem(e *models.Event) models.ListEventsResponseItem {
	return models.ListEventsResponseItem{
		ID:          e.ID,
		Title:       e.Title,
		OrganizedBy: e.OrganizedBy,
		EventDate:   e.EventDate,
		Location:    e.Location,
	}
}

// Get returns one event with its tiers priced as of now.
func (s *EventService) Get(ctx context.Context, id int64) (*models.EventDetailResponse, error) {
	event, err := s.catalog.GetByID(ctx, id)
	if err != nil {
		return nil, errors.Internal("failed to load event", err)
	}
	if event == nil || !event.Approved {
		return nil, errors.NotFound("event not found")
	}

	ticketTypes, err := s.inventory.ListByEvent(ctx, id)
	if err != nil {
		return nil, errors.Internal("failed to load ticket types", err)
	}
	phases, err := s.catalog.ListSalePhases(ctx, id)
	if err != nil {
		return nil, errors.Internal("failed to load sale phases", err)
	}

	now := time.Now()
	views := make([]models.TicketTypeView, 0, len(ticketTypes))
	for _, tt := range ticketTypes {
		views = append(views, models.TicketTypeView{
			Name:              tt.Name,
			UnitPrice:         tt.UnitPrice,
			EffectivePrice:    pricing.EffectivePrice(tt.UnitPrice, phases, now),
			QuantityAvailable: tt.QuantityAvailable,
		})
	}

	event.TicketTypes = ticketTypes
	event.SalePhases = phases

	return &models.EventDetailResponse{
		Event:       event,
		TicketTypes: views,
	}, nil
}

// Analytics summarizes sales for one event. Revenue is recomputed from the
// pricing policy at each ticket's issue time, not read from stored amounts.
func (s *EventService) Analytics(ctx context.Context, requesterID int64, requesterRole string, eventID int64) (*models.AnalyticsResponse, error) {
	event, err := s.catalog.GetByID(ctx, eventID)
	if err != nil {
		return nil, errors.Internal("failed to load event", err)
	}
	if event == nil {
		return nil, errors.NotFound("event not found")
	}
	if event.OwnerID != requesterID && requesterRole != "admin" {
		return nil, errors.PermissionDenied("analytics are restricted to the event owner")
	}

	ticketTypes, err := s.inventory.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, errors.Internal("failed to load ticket types", err)
	}
	phases, err := s.catalog.ListSalePhases(ctx, eventID)
	if err != nil {
		return nil, errors.Internal("failed to load sale phases", err)
	}
	tickets, err := s.tickets.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, errors.Internal("failed to load tickets", err)
	}

	policy := pricing.Resolve(event, ticketTypes)

	byType := make(map[string]*models.AnalyticsTypeBreakdown, len(ticketTypes))
	for _, tt := range ticketTypes {
		byType[tt.Name] = &models.AnalyticsTypeBreakdown{
			TicketType: tt.Name,
			Available:  tt.QuantityAvailable,
		}
	}

	resp := &models.AnalyticsResponse{EventID: eventID}
	for _, t := range tickets {
		base, err := policy.UnitPrice(t.TicketType)
		if err != nil {
			// Tier removed after issuance, fall back to the stamped price.
			base = t.UnitPrice
		}
		paid := pricing.EffectivePrice(base, phases, t.IssuedAt)

		resp.TicketsIssued++
		resp.TotalRevenue = resp.TotalRevenue.Add(paid)

		row, ok := byType[t.TicketType]
		if !ok {
			row = &models.AnalyticsTypeBreakdown{TicketType: t.TicketType}
			byType[t.TicketType] = row
		}
		row.Sold++
		row.Revenue = row.Revenue.Add(paid)
	}

	for _, name := range models.TicketTypeNames {
		if row, ok := byType[name]; ok {
			resp.ByType = append(resp.ByType, *row)
		}
	}
	return resp, nil
}
