package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orderdesk/internal/app"
	"github.com/vladislavdragonenkov/orderdesk/internal/domain"
	"github.com/vladislavdragonenkov/orderdesk/internal/service/orderentry"
	"github.com/vladislavdragonenkov/orderdesk/internal/version"
)

// setupLogger настраивает формат и уровень логирования для сервиса.
func setupLogger() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.InfoLevel)
}

func main() {
	setupLogger()

	console := flag.Bool("console", false, "run interactive order entry console")
	flag.Parse()

	cfg, err := app.ConfigFromEnv()
	if err != nil {
		log.WithError(err).Fatal("некорректная конфигурация")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{
		"version":      version.String(),
		"metrics_addr": cfg.MetricsAddr,
		"storage":      cfg.StorageDriver,
	}).Info("запускаем orderdesk")

	application, err := app.New(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("инициализация приложения")
	}
	defer func() {
		_ = application.Close()
	}()

	if *console {
		go func() {
			if err := application.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.WithError(err).Error("фоновые компоненты завершились с ошибкой")
			}
		}()
		runConsole(ctx, application)
		stop()
	} else {
		if err := application.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.WithError(err).Fatal("приложение завершилось с ошибкой")
		}
	}

	log.Info("orderdesk остановлен")
}

// runConsole ведёт оператора по циклу оформления заказа:
// выбор покупателя, набор позиций, размещение.
func runConsole(ctx context.Context, application *app.App) {
	scanner := bufio.NewScanner(os.Stdin)

	for ctx.Err() == nil {
		customer, ok := chooseCustomer(ctx, application, scanner)
		if !ok {
			return
		}

		lines, ok := collectLines(ctx, application, scanner)
		if !ok {
			return
		}
		if len(lines) == 0 {
			fmt.Println("заказ пуст, ничего не размещаем")
			continue
		}

		order, err := application.Builder.PlaceOrder(ctx, customer.ID, lines)
		if err != nil {
			fmt.Printf("заказ отклонён: %v\n", err)
			continue
		}
		printReceipt(customer, order)
	}
}

func chooseCustomer(ctx context.Context, application *app.App, scanner *bufio.Scanner) (domain.Customer, bool) {
	customers, err := application.Deps.Customers.List(ctx)
	if err != nil {
		fmt.Printf("не удалось получить список покупателей: %v\n", err)
		return domain.Customer{}, false
	}

	fmt.Println("\nпокупатели:")
	for i, c := range customers {
		fmt.Printf("  %2d. %s %s (%s)\n", i+1, c.LastName, c.FirstName, c.Phone)
	}
	fmt.Print("номер покупателя (q — выход): ")

	input, ok := readLine(scanner)
	if !ok || input == "q" {
		return domain.Customer{}, false
	}
	idx, err := strconv.Atoi(input)
	if err != nil || idx < 1 || idx > len(customers) {
		fmt.Println("некорректный номер покупателя")
		return chooseCustomer(ctx, application, scanner)
	}
	return customers[idx-1], true
}

func collectLines(ctx context.Context, application *app.App, scanner *bufio.Scanner) ([]orderentry.LineRequest, bool) {
	products, err := application.Deps.Products.List(ctx)
	if err != nil {
		fmt.Printf("не удалось получить каталог: %v\n", err)
		return nil, false
	}

	fmt.Println("каталог:")
	for i, p := range products {
		fmt.Printf("  %2d. %-40s %8s  остаток %d\n", i+1, p.Description, formatMinor(p.PriceMinor), p.QtyOnHand)
	}

	var lines []orderentry.LineRequest
	for {
		fmt.Print("номер товара (done — разместить заказ, q — выход): ")
		input, ok := readLine(scanner)
		if !ok || input == "q" {
			return nil, false
		}
		if input == "done" {
			return lines, true
		}

		idx, err := strconv.Atoi(input)
		if err != nil || idx < 1 || idx > len(products) {
			fmt.Println("некорректный номер товара")
			continue
		}

		fmt.Print("количество: ")
		qtyInput, ok := readLine(scanner)
		if !ok {
			return nil, false
		}
		qty, err := strconv.ParseInt(qtyInput, 10, 32)
		if err != nil || qty <= 0 {
			fmt.Println("количество должно быть положительным числом")
			continue
		}

		lines = append(lines, orderentry.LineRequest{
			UPC: products[idx-1].UPC,
			Qty: int32(qty),
		})
	}
}

func printReceipt(customer domain.Customer, order domain.Order) {
	fmt.Printf("\nзаказ %s для %s %s\n", order.ID, customer.LastName, customer.FirstName)
	for _, item := range order.Items {
		fmt.Printf("  %s x%d по %s\n", item.UPC, item.Qty, formatMinor(item.PriceMinor))
	}
	fmt.Printf("итого: %s\n", formatMinor(order.AmountMinor))
}

func readLine(scanner *bufio.Scanner) (string, bool) {
	if !scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(scanner.Text()), true
}

// formatMinor печатает цену в минорных единицах как доллары с центами.
func formatMinor(minor int64) string {
	return fmt.Sprintf("$%d.%02d", minor/100, minor%100)
}
