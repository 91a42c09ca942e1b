package main

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/segyhp/claim-calculator/internal/domain"
	"github.com/segyhp/claim-calculator/pkg/utils"
)

func newForcedAbsenceCmd(a *app) *cobra.Command {
	var request domain.ForcedAbsenceRequest
	var salary string

	cmd := &cobra.Command{
		Use:   "oof",
		Short: "Lost wages for a forced absence period",
		Example: `  claimcalc oof --start 04.02.2022 --ref 04.03.2022 --salary 60000
  claimcalc oof --end-work 2022-02-03 --salary 60000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if request.StartDate == "" && request.EndWorkDate == "" {
				return fmt.Errorf("either --start or --end-work is required")
			}
			amount, err := parseDecimal("salary", salary)
			if err != nil {
				return err
			}
			request.AverageSalary = amount

			resp, err := a.service.CalculateForcedAbsence(cmd.Context(), &request)
			if err != nil {
				return err
			}
			printForcedAbsence(cmd.OutOrStdout(), resp)
			return nil
		},
	}

	cmd.Flags().StringVar(&request.StartDate, "start", "", "First day of forced absence")
	cmd.Flags().StringVar(&request.EndWorkDate, "end-work", "", "Last working day, absence starts the next day")
	cmd.Flags().StringVar(&request.ReferenceDate, "ref", "", "Date the claim is calculated on (default today)")
	cmd.Flags().StringVar(&salary, "salary", "", "Average monthly salary")
	_ = cmd.MarkFlagRequired("salary")
	cmd.MarkFlagsMutuallyExclusive("start", "end-work")

	return cmd
}

func newPayoffCmd(a *app) *cobra.Command {
	var request domain.PayoffRequest
	var payment1, payment2 string

	cmd := &cobra.Command{
		Use:   "payoff",
		Short: "Overdue salary and key rate compensation",
		Example: `  claimcalc payoff --payoff-date 01.11.2018 --payday1 1 --payment1 1000 \
    --payday2 15 --payment2 500 --ref 28.12.2018 --key-rate 7.5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if request.Payment1, err = parseDecimal("payment1", payment1); err != nil {
				return err
			}
			if payment2 != "" {
				if request.Payment2, err = parseDecimal("payment2", payment2); err != nil {
					return err
				}
			}

			resp, err := a.service.CalculatePayoff(cmd.Context(), &request)
			if err != nil {
				return err
			}
			printPayoff(cmd.OutOrStdout(), resp)
			return nil
		},
	}

	cmd.Flags().StringVar(&request.PayoffDate, "payoff-date", "", "Date wages stopped being paid")
	cmd.Flags().IntVar(&request.Payday1, "payday1", 0, "Day of month of the main payment")
	cmd.Flags().StringVar(&payment1, "payment1", "", "Main payment amount")
	cmd.Flags().IntVar(&request.Payday2, "payday2", 0, "Day of month of the advance, 0 if none")
	cmd.Flags().StringVar(&payment2, "payment2", "", "Advance amount")
	cmd.Flags().StringVar(&request.ReferenceDate, "ref", "", "Date the claim is calculated on (default today)")
	_ = cmd.MarkFlagRequired("payoff-date")
	_ = cmd.MarkFlagRequired("payday1")
	_ = cmd.MarkFlagRequired("payment1")

	return cmd
}

func newKeyRateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "keyrate",
		Short: "Print the current central bank key rate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rate, err := a.service.GetKeyRate(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Key rate: %s%%\n", rate.String())
			return nil
		},
	}
}

func printForcedAbsence(w io.Writer, resp *domain.ForcedAbsenceResponse) {
	r := resp.Result
	fmt.Fprintf(w, "Forced absence: %s - %s\n", resp.StartDate, resp.ReferenceDate)
	fmt.Fprintf(w, "Workdays: %d (first month %d, full months %d, current month %d)\n",
		r.TotalDays, r.FirstMonthDays, r.FullMonths, r.CurrentMonthDays)
	fmt.Fprintf(w, "Daily rate: %s\n", utils.FormatMoney(r.DailyRate))
	fmt.Fprintf(w, "Lost wages: %s\n", utils.FormatMoney(r.Profit))
}

func printPayoff(w io.Writer, resp *domain.PayoffResponse) {
	r := resp.Result
	fmt.Fprintf(w, "Unpaid since: %s, calculated on %s\n", resp.PayoffDate, resp.ReferenceDate)
	fmt.Fprintf(w, "Missed paydays: %d main, %d advance\n", r.Paydays1Count, r.Paydays2Count)
	fmt.Fprintf(w, "Overdue amount: %s\n", utils.FormatMoney(r.Profit))
	fmt.Fprintf(w, "Days of delay: %d\n", r.ElapsedDays)
	if !r.CompensationAvailable() {
		fmt.Fprintf(w, "Compensation: unavailable (%s)\n", r.KeyRateError)
		return
	}
	fmt.Fprintf(w, "Key rate: %s%%\n", r.KeyRate.Decimal.String())
	fmt.Fprintf(w, "Compensation: %s\n", utils.FormatMoney(r.Compensation.Decimal))
}

func parseDecimal(flag, value string) (decimal.Decimal, error) {
	d, err := utils.DecimalFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("--%s: %w", flag, err)
	}
	return d, nil
}
