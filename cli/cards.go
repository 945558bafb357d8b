package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"gpcards/database"
)

func newCardsCommand(a *app) *cobra.Command {
	var (
		company string
		contact string
		exact   bool
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "cards",
		Short: "查询名片库",
		RunE: func(cmd *cobra.Command, args []string) error {
			cards, err := a.db.GetBusinessCards(cmd.Context(), database.CardQuery{
				Company: company,
				Contact: contact,
				Exact:   exact,
				Limit:   limit,
			})
			if err != nil {
				return err
			}

			if len(cards) == 0 {
				fmt.Println("未找到匹配的名片")
				return nil
			}
			for _, card := range cards {
				fmt.Printf("%s / %s\n", card.Company, card.ContactName)
				if len(card.Phones) > 0 {
					fmt.Printf("  电话: %s\n", strings.Join(card.Phones, ", "))
				}
				if len(card.Emails) > 0 {
					fmt.Printf("  邮箱: %s\n", strings.Join(card.Emails, ", "))
				}
				if card.Address != "" {
					fmt.Printf("  地址: %s\n", card.Address)
				}
				fmt.Printf("  提及公告数: %d\n", card.Mentions)
			}
			fmt.Printf("共 %d 条\n", len(cards))
			return nil
		},
	}

	cmd.Flags().StringVar(&company, "company", "", "按公司名筛选")
	cmd.Flags().StringVar(&contact, "contact", "", "按联系人筛选")
	cmd.Flags().BoolVar(&exact, "exact", false, "精确匹配而非模糊匹配")
	cmd.Flags().IntVar(&limit, "limit", 50, "最多返回条数")
	return cmd
}
