package cli

import (
	"github.com/spf13/cobra"
)

// NewShowCommand creates the show command.
func NewShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show cart lines, prices and the checkout selection",
		Long: `Fetch the cart, fill in product categories and print every line with its
discounted price. All in-stock lines start selected.

Example:
  hwcart show
  hwcart show --format json`,
		Args:          cobra.NoArgs,
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
			return s.out.Success(s.cartView())
		},
	}
}

// NewCountCommand creates the count command.
func NewCountCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "count",
		Short:         "Print the cart badge count",
		Args:          cobra.NoArgs,
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
			return s.out.Success(countView{Count: s.ctrl.Badge().Count()})
		},
	}
}
