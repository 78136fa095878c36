package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/hwcart/internal/store"
)

// CheckoutOptions holds flags for the checkout command.
type CheckoutOptions struct {
	*RootOptions
	Only []string
}

// NewCheckoutCommand creates the checkout command.
func NewCheckoutCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckoutOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Hand the selected lines off to checkout",
		Long: `Store the selected in-stock lines, with discounted prices, as the checkout
payload. Every line is selected unless --only narrows the selection.

Example:
  hwcart checkout
  hwcart checkout --only ci-1,ci-3`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, opts.RootOptions)
			if err != nil {
				return err
			}
			defer s.close()

			if err := s.load(); err != nil {
				return err
			}
			if len(opts.Only) > 0 {
				if err := s.selectOnly(opts.Only); err != nil {
					return err
				}
			}

			h, err := s.ctrl.Proceed(s.ctx)
			if err != nil {
				return s.cartFailure("could not start checkout", err)
			}
			return s.out.Success(s.handoffView(h))
		},
	}

	cmd.Flags().StringSliceVar(&opts.Only, "only", nil, "cart line ids to check out (default: all)")

	return cmd
}

// selectOnly narrows the freshly loaded all-selected cart to ids.
func (s *session) selectOnly(ids []string) error {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := s.ctrl.Item(id); !ok {
			return fail(s.out, ExitCommandError, "USAGE", fmt.Sprintf("no cart line %q", id), nil)
		}
		want[id] = true
	}
	for _, id := range s.ctrl.SelectedIDs() {
		if want[id] {
			continue
		}
		if err := s.ctrl.ToggleItem(id); err != nil {
			return s.cartFailure("could not change selection", err)
		}
	}
	return nil
}

// PayloadOptions holds flags for the payload command.
type PayloadOptions struct {
	*RootOptions
	Clear bool
}

// NewPayloadCommand creates the payload command.
func NewPayloadCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PayloadOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "payload [key]",
		Short: "Print or clear a stored local payload",
		Long: `Print the payload stored under key (default: the checkout key), or delete
it with --clear.

Example:
  hwcart payload
  hwcart payload --clear`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, opts.RootOptions)
			if err != nil {
				return err
			}
			defer s.close()

			key := s.cfg.Checkout.Key
			if len(args) == 1 {
				key = args[0]
			}

			if opts.Clear {
				removed, err := s.store.Delete(s.ctx, key)
				if err != nil {
					return fail(s.out, ExitCommandError, "STORE", "failed to clear payload", err)
				}
				return s.out.Success(clearedView{Key: key, Removed: removed})
			}

			p, err := s.store.Get(s.ctx, key)
			if errors.Is(err, store.ErrNotFound) {
				return fail(s.out, ExitFailure, "NOT_FOUND", fmt.Sprintf("nothing stored under %q", key), err)
			}
			if err != nil {
				return fail(s.out, ExitCommandError, "STORE", "failed to read payload", err)
			}
			return s.out.Success(payloadView{
				Key:       p.Key,
				Revision:  p.Revision,
				WrittenAt: p.WrittenAt,
				Value:     p.Value,
			})
		},
	}

	cmd.Flags().BoolVar(&opts.Clear, "clear", false, "delete the payload instead of printing it")

	return cmd
}
