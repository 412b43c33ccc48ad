package service

import (
	"context"
	"sync"

	"github.com/lib/pq"

	"github.com/menuboard/display-server-go/internal/model"
)

// In-memory repository fakes. They implement just enough of the repository
// contracts for service tests: no pagination, no real SQL semantics beyond
// the pairing_code and email unique indexes.

type publishedEvent struct {
	Room string
	Name string
	Data any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, room, eventName string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{Room: room, Name: eventName, Data: payload})
	return nil
}

func (p *recordingPublisher) published() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedEvent(nil), p.events...)
}

type fakeUserRepo struct {
	users       map[string]*model.User
	restaurants *fakeRestaurantRepo
}

func newFakeUserRepo(restaurants *fakeRestaurantRepo) *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*model.User{}, restaurants: restaurants}
}

func (r *fakeUserRepo) CreateOwner(_ context.Context, params model.CreateUserParams, restaurantID, restaurantName string) (*model.User, *model.Restaurant, error) {
	for _, u := range r.users {
		if u.Email == params.Email {
			return nil, nil, &pq.Error{Code: "23505", Constraint: "users_email_key"}
		}
	}
	user := &model.User{ID: params.ID, Email: params.Email, PasswordHash: params.PasswordHash}
	r.users[user.ID] = user

	restaurant := &model.Restaurant{ID: restaurantID, OwnerID: user.ID, Name: restaurantName}
	if r.restaurants != nil {
		r.restaurants.add(restaurant)
	}
	return user, restaurant, nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	return r.users[id], nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

type fakeRestaurantRepo struct {
	restaurants map[string]*model.Restaurant
	menuIDs     map[string][]string
	itemIDs     map[string][]string
	displayIDs  map[string][]string
	stats       map[string]*model.RestaurantStats
}

func newFakeRestaurantRepo() *fakeRestaurantRepo {
	return &fakeRestaurantRepo{
		restaurants: map[string]*model.Restaurant{},
		menuIDs:     map[string][]string{},
		itemIDs:     map[string][]string{},
		displayIDs:  map[string][]string{},
		stats:       map[string]*model.RestaurantStats{},
	}
}

func (r *fakeRestaurantRepo) add(restaurant *model.Restaurant) {
	r.restaurants[restaurant.ID] = restaurant
}

func (r *fakeRestaurantRepo) FindByID(_ context.Context, id string) (*model.Restaurant, error) {
	return r.restaurants[id], nil
}

func (r *fakeRestaurantRepo) FindByOwnerID(_ context.Context, ownerID string) (*model.Restaurant, error) {
	for _, rest := range r.restaurants {
		if rest.OwnerID == ownerID {
			return rest, nil
		}
	}
	return nil, nil
}

func (r *fakeRestaurantRepo) Update(_ context.Context, id string, params model.UpdateRestaurantParams) (*model.Restaurant, error) {
	rest := r.restaurants[id]
	if rest == nil {
		return nil, nil
	}
	if params.Name != nil {
		rest.Name = *params.Name
	}
	if params.Description != nil {
		rest.Description = params.Description
	}
	return rest, nil
}

func (r *fakeRestaurantRepo) MenuIDs(_ context.Context, restaurantID string) ([]string, error) {
	return r.menuIDs[restaurantID], nil
}

func (r *fakeRestaurantRepo) ItemIDs(_ context.Context, restaurantID string) ([]string, error) {
	return r.itemIDs[restaurantID], nil
}

func (r *fakeRestaurantRepo) DisplayIDs(_ context.Context, restaurantID string) ([]string, error) {
	return r.displayIDs[restaurantID], nil
}

func (r *fakeRestaurantRepo) Stats(_ context.Context, restaurantID string) (*model.RestaurantStats, error) {
	if s, ok := r.stats[restaurantID]; ok {
		stats := *s
		return &stats, nil
	}
	return &model.RestaurantStats{}, nil
}

type fakeMenuRepo struct {
	menus map[string]*model.Menu
	items map[string][]model.Item

	// itemSource, when set, resolves ItemIDs params into item rows the way
	// the real join table does. Tests may also seed items directly.
	itemSource *fakeItemRepo
}

func newFakeMenuRepo() *fakeMenuRepo {
	return &fakeMenuRepo{menus: map[string]*model.Menu{}, items: map[string][]model.Item{}}
}

func (r *fakeMenuRepo) resolveItems(menuID string, itemIDs []string) {
	if r.itemSource == nil || itemIDs == nil {
		return
	}
	items := make([]model.Item, 0, len(itemIDs))
	for _, id := range itemIDs {
		if item, ok := r.itemSource.items[id]; ok {
			items = append(items, *item)
		}
	}
	r.items[menuID] = items
}

func (r *fakeMenuRepo) Create(_ context.Context, params model.CreateMenuParams) (*model.Menu, error) {
	menu := &model.Menu{
		ID:           params.ID,
		RestaurantID: params.RestaurantID,
		Name:         params.Name,
		Description:  params.Description,
	}
	r.menus[menu.ID] = menu
	r.resolveItems(menu.ID, params.ItemIDs)
	return menu, nil
}

func (r *fakeMenuRepo) FindByID(_ context.Context, id string) (*model.Menu, error) {
	return r.menus[id], nil
}

func (r *fakeMenuRepo) FindByRestaurantID(_ context.Context, restaurantID string) ([]model.Menu, error) {
	var result []model.Menu
	for _, m := range r.menus {
		if m.RestaurantID == restaurantID {
			result = append(result, *m)
		}
	}
	return result, nil
}

func (r *fakeMenuRepo) FindItems(_ context.Context, menuID string) ([]model.Item, error) {
	return r.items[menuID], nil
}

func (r *fakeMenuRepo) Update(_ context.Context, id string, params model.UpdateMenuParams) (*model.Menu, error) {
	menu := r.menus[id]
	if menu == nil {
		return nil, nil
	}
	if params.Name != nil {
		menu.Name = *params.Name
	}
	if params.Description != nil {
		menu.Description = params.Description
	}
	r.resolveItems(id, params.ItemIDs)
	return menu, nil
}

func (r *fakeMenuRepo) Delete(_ context.Context, id string) error {
	delete(r.menus, id)
	delete(r.items, id)
	return nil
}

type fakeItemRepo struct {
	items map[string]*model.Item
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{items: map[string]*model.Item{}}
}

func (r *fakeItemRepo) Create(_ context.Context, params model.CreateItemParams) (*model.Item, error) {
	item := &model.Item{
		ID:           params.ID,
		RestaurantID: params.RestaurantID,
		Name:         params.Name,
		Description:  params.Description,
		Price:        params.Price,
		Available:    true,
	}
	r.items[item.ID] = item
	return item, nil
}

func (r *fakeItemRepo) FindByID(_ context.Context, id string) (*model.Item, error) {
	return r.items[id], nil
}

func (r *fakeItemRepo) FindByRestaurantID(_ context.Context, restaurantID string) ([]model.Item, error) {
	var result []model.Item
	for _, item := range r.items {
		if item.RestaurantID == restaurantID {
			result = append(result, *item)
		}
	}
	return result, nil
}

func (r *fakeItemRepo) CountByIDsInRestaurant(_ context.Context, ids []string, restaurantID string) (int, error) {
	count := 0
	for _, id := range ids {
		if item, ok := r.items[id]; ok && item.RestaurantID == restaurantID {
			count++
		}
	}
	return count, nil
}

func (r *fakeItemRepo) Update(_ context.Context, id string, params model.UpdateItemParams) (*model.Item, error) {
	item := r.items[id]
	if item == nil {
		return nil, nil
	}
	if params.Name != nil {
		item.Name = *params.Name
	}
	if params.Description != nil {
		item.Description = params.Description
	}
	if params.Price != nil {
		item.Price = *params.Price
	}
	if params.Available != nil {
		item.Available = *params.Available
	}
	return item, nil
}

func (r *fakeItemRepo) ToggleAvailability(_ context.Context, id string) (*model.Item, error) {
	item := r.items[id]
	if item == nil {
		return nil, nil
	}
	item.Available = !item.Available
	return item, nil
}

func (r *fakeItemRepo) SetImageURL(_ context.Context, id, imageURL string) (*model.Item, error) {
	item := r.items[id]
	if item == nil {
		return nil, nil
	}
	item.ImageURL = &imageURL
	return item, nil
}

func (r *fakeItemRepo) Delete(_ context.Context, id string) error {
	delete(r.items, id)
	return nil
}

func (r *fakeItemRepo) ReferencedImageURLs(_ context.Context) ([]string, error) {
	var urls []string
	for _, item := range r.items {
		if item.ImageURL != nil {
			urls = append(urls, *item.ImageURL)
		}
	}
	return urls, nil
}

type fakeDisplayRepo struct {
	displays map[string]*model.Display

	// createErr, when set, is returned by Create once.
	createErr error
}

func newFakeDisplayRepo() *fakeDisplayRepo {
	return &fakeDisplayRepo{displays: map[string]*model.Display{}}
}

func (r *fakeDisplayRepo) Create(_ context.Context, params model.CreateDisplayParams) (*model.Display, error) {
	if r.createErr != nil {
		err := r.createErr
		r.createErr = nil
		return nil, err
	}
	display := &model.Display{
		ID:           params.ID,
		RestaurantID: params.RestaurantID,
		Name:         params.Name,
		PairingCode:  params.PairingCode,
	}
	r.displays[display.ID] = display
	return display, nil
}

func (r *fakeDisplayRepo) FindByID(_ context.Context, id string) (*model.Display, error) {
	return r.displays[id], nil
}

func (r *fakeDisplayRepo) FindByPairingCode(_ context.Context, code string) (*model.Display, error) {
	for _, d := range r.displays {
		if d.PairingCode == code {
			return d, nil
		}
	}
	return nil, nil
}

func (r *fakeDisplayRepo) FindByRestaurantID(_ context.Context, restaurantID string) ([]model.Display, error) {
	var result []model.Display
	for _, d := range r.displays {
		if d.RestaurantID == restaurantID {
			result = append(result, *d)
		}
	}
	return result, nil
}

func (r *fakeDisplayRepo) UpdateName(_ context.Context, id, name string) (*model.Display, error) {
	d := r.displays[id]
	if d == nil {
		return nil, nil
	}
	d.Name = name
	return d, nil
}

func (r *fakeDisplayRepo) SetPairingCode(_ context.Context, id, code string) (*model.Display, error) {
	d := r.displays[id]
	if d == nil {
		return nil, nil
	}
	d.PairingCode = code
	return d, nil
}

func (r *fakeDisplayRepo) AssignMenu(_ context.Context, id string, menuID *string) (*model.Display, error) {
	d := r.displays[id]
	if d == nil {
		return nil, nil
	}
	d.CurrentMenuID = menuID
	return d, nil
}

func (r *fakeDisplayRepo) SetMedia(_ context.Context, id, mediaURL, mediaType string) (*model.Display, error) {
	d := r.displays[id]
	if d == nil {
		return nil, nil
	}
	d.MediaURL = &mediaURL
	d.MediaType = &mediaType
	return d, nil
}

func (r *fakeDisplayRepo) ClearMedia(_ context.Context, id string) (*model.Display, error) {
	d := r.displays[id]
	if d == nil {
		return nil, nil
	}
	d.MediaURL = nil
	d.MediaType = nil
	return d, nil
}

func (r *fakeDisplayRepo) Delete(_ context.Context, id string) error {
	delete(r.displays, id)
	return nil
}

func (r *fakeDisplayRepo) ReferencedMediaURLs(_ context.Context) ([]string, error) {
	var urls []string
	for _, d := range r.displays {
		if d.MediaURL != nil {
			urls = append(urls, *d.MediaURL)
		}
	}
	return urls, nil
}
