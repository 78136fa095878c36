package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// AddOptions holds flags for the add command.
type AddOptions struct {
	*RootOptions
	Quantity int
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AddOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a product to the cart",
		Long: `Add a product to the server cart. The local view is not changed until the
next fetch; the badge is recounted from the server.

Example:
  hwcart add p-101 --qty 2`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, opts.RootOptions)
			if err != nil {
				return err
			}
			defer s.close()

			productID := args[0]
			if err := s.ctrl.AddItem(s.ctx, productID, opts.Quantity); err != nil {
				return s.cartFailure(fmt.Sprintf("could not add %s", productID), err)
			}
			return s.out.Success(mutationView{
				Action:    "added",
				ProductID: productID,
				Quantity:  opts.Quantity,
				Count:     s.ctrl.Badge().Count(),
			})
		},
	}

	cmd.Flags().IntVarP(&opts.Quantity, "qty", "q", 1, "quantity to add")

	return cmd
}

// NewSetQtyCommand creates the set-qty command.
func NewSetQtyCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set-qty <item-id> <quantity>",
		Short: "Change the quantity of a cart line",
		Long: `Set the quantity of a cart line. Quantities outside 1..stock are refused
without contacting the server.

Example:
  hwcart set-qty ci-1 3`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.close()

			itemID := args[0]
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return fail(s.out, ExitCommandError, "USAGE", fmt.Sprintf("quantity %q is not a number", args[1]), err)
			}

			if err := s.load(); err != nil {
				return err
			}
			if err := s.ctrl.UpdateQuantity(s.ctx, itemID, qty); err != nil {
				return s.cartFailure(fmt.Sprintf("could not set %s to %d", itemID, qty), err)
			}

			item, _ := s.ctrl.Item(itemID)
			line := s.lineView(item)
			return s.out.Success(mutationView{
				Action:   "updated",
				ItemID:   itemID,
				Quantity: qty,
				Line:     &line,
				Count:    s.ctrl.Badge().Count(),
			})
		},
	}
}

// NewRemoveCommand creates the remove command.
func NewRemoveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <item-id>",
		Short: "Remove a line from the cart",
		Long: `Remove a cart line. Removing a line that is not in the cart does nothing.

Example:
  hwcart remove ci-2`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.close()

			if err := s.load(); err != nil {
				return err
			}
			itemID := args[0]
			if err := s.ctrl.RemoveItem(s.ctx, itemID); err != nil {
				return s.cartFailure(fmt.Sprintf("could not remove %s", itemID), err)
			}
			return s.out.Success(mutationView{
				Action: "removed",
				ItemID: itemID,
				Count:  s.ctrl.Badge().Count(),
			})
		},
	}
}
