// seed 往数据库灌入随机测试数据，便于调试查询与导出。
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/brianvoe/gofakeit/v6"

	"gpcards/database"
)

var companySuffixes = []string{"有限公司", "集团有限公司", "科技有限公司", "咨询有限公司"}

var surnames = []string{"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴"}
var givenNames = []string{"伟", "芳", "娜", "敏", "静", "磊", "军", "洋", "勇", "艳"}

func main() {
	dbPath := flag.String("db", "data/gp.db", "数据库路径")
	count := flag.Int("count", 50, "生成公告数量")
	seed := flag.Int64("seed", 0, "随机种子，0 为随机")
	flag.Parse()

	if *seed != 0 {
		gofakeit.Seed(*seed)
	}

	db, err := database.New(*dbPath)
	if err != nil {
		log.Fatalf("打开数据库失败: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	cards := 0
	for i := 0; i < *count; i++ {
		buyer := fakeCompany()
		agent := fakeCompany()
		annID, err := db.InsertAnnouncement(ctx, database.AnnouncementRecord{
			Title:       buyer + fakeProject() + "中标公告",
			URL:         fmt.Sprintf("http://www.ccgp.gov.cn/cggg/%s/t%d_%d.htm", gofakeit.DigitN(6), gofakeit.Number(1000000, 9999999), i),
			PublishDate: gofakeit.Date().Format("2006-01-02"),
			Source:      "seed",
			ProjectName: fakeProject(),
			BuyerName:   buyer,
			AgentName:   agent,
		})
		if err != nil {
			log.Fatalf("写入公告失败: %v", err)
		}

		for _, entry := range []struct {
			company string
			role    string
		}{
			{buyer, "buyer"},
			{agent, "agent"},
			{agent, "project"},
		} {
			cardID, err := db.UpsertBusinessCard(ctx, database.BusinessCard{
				Company:     entry.company,
				ContactName: fakeName(),
				Phones:      []string{fakePhone()},
			})
			if err != nil {
				log.Fatalf("写入名片失败: %v", err)
			}
			if err := db.AddBusinessCardMention(ctx, cardID, annID, entry.role); err != nil {
				log.Fatalf("写入提及失败: %v", err)
			}
			cards++
		}
	}

	fmt.Printf("已生成 %d 份公告、%d 条名片记录\n", *count, cards)
}

func fakeCompany() string {
	return gofakeit.RandomString(surnames) + gofakeit.RandomString(givenNames) +
		gofakeit.RandomString([]string{"建设", "信息", "宏达", "中昊", "华宇", "众信"}) +
		gofakeit.RandomString(companySuffixes)
}

func fakeProject() string {
	return gofakeit.RandomString([]string{"办公设备采购", "信息化建设", "物业服务", "实验室设备采购", "道路养护工程"}) + "项目"
}

func fakeName() string {
	return gofakeit.RandomString(surnames) + gofakeit.RandomString(givenNames)
}

func fakePhone() string {
	if gofakeit.Bool() {
		return "1" + gofakeit.RandomString([]string{"3", "5", "8", "9"}) + gofakeit.DigitN(9)
	}
	return "0" + gofakeit.DigitN(2) + "-" + gofakeit.DigitN(8)
}
