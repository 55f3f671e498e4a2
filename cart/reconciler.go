package cart

import (
	"context"
	"errors"
	"fmt"

	"storefront-bff/models"

	"go.uber.org/zap"
)

var ErrMissingProductID = errors.New("guest line item has no product id")

// CartService is the part of the store API the reconciler needs.
type CartService interface {
	FetchCart(ctx context.Context) (*models.ServerCart, error)
	AddItem(ctx context.Context, req models.AddItemRequest) (*models.ServerCart, error)
	SetGiftWrap(ctx context.Context, giftWrap bool) (*models.ServerCart, error)
}

// Reconciler merges a guest cart into the server cart of the user who just logged in.
type Reconciler struct {
	guest   *GuestStore
	service CartService
	logger  *zap.Logger
}

func NewReconciler(guest *GuestStore, service CartService, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		guest:   guest,
		service: service,
		logger:  logger,
	}
}

// Reconcile pushes every guest line to the server cart one request at a time, then
// the gift wrap flag if the guest set it, clears the guest cart and returns the
// server cart. If any request fails the remaining ones are skipped, the guest cart
// is left untouched and the *MergeError is returned.
//
// Once started, a merge is not cancelled by ctx; each request is bounded by the
// store API client's own timeout.
func (r *Reconciler) Reconcile(ctx context.Context) (*models.ServerCart, error) {
	ctx = context.WithoutCancel(ctx)
	guest := r.guest.Load(ctx)

	if guest.IsEmpty() {
		return r.service.FetchCart(ctx)
	}

	plan := r.plan(guest)
	r.logger.Info("merging guest cart",
		zap.Int("items", len(guest.Items)),
		zap.Bool("gift_wrap", guest.GiftWrap),
		zap.Int("steps", len(plan)),
	)

	if err := runSequential(ctx, plan); err != nil {
		r.logger.Error("guest cart merge failed, guest cart kept", zap.Error(err))
		return nil, err
	}

	if err := r.guest.Clear(ctx); err != nil {
		// the server already holds the merged lines; a later retry would add them twice
		r.logger.Error("guest cart merged but not cleared", zap.Error(err))
	}

	server, err := r.service.FetchCart(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch merged cart: %w", err)
	}
	return server, nil
}

// plan turns the guest cart into the ordered list of store API calls.
func (r *Reconciler) plan(guest models.GuestCart) []task {
	tasks := make([]task, 0, len(guest.Items)+1)
	for _, item := range guest.Items {
		req := models.AddItemRequest{
			ProductID:          item.Product.ID,
			Quantity:           item.Quantity,
			SelectedAttributes: item.SelectedAttributes,
		}
		itemID := item.ID
		tasks = append(tasks, task{
			op: "add " + req.ProductID,
			run: func(ctx context.Context) error {
				if req.ProductID == "" {
					return ErrMissingProductID
				}
				r.logger.Info("adding guest item to server cart",
					zap.String("guest_item_id", itemID),
					zap.String("product_id", req.ProductID),
					zap.Int("quantity", req.Quantity),
				)
				_, err := r.service.AddItem(ctx, req)
				return err
			},
		})
	}

	// false is never pushed: it would overwrite whatever the server cart already has
	if guest.GiftWrap {
		tasks = append(tasks, task{
			op: "set gift wrap",
			run: func(ctx context.Context) error {
				_, err := r.service.SetGiftWrap(ctx, true)
				return err
			},
		})
	}
	return tasks
}
