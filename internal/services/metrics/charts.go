package metrics

import (
	"strconv"

	"github.com/Bright579523/data-analytics-onlineRetail/internal/models"
)

// weekdayOrder is the fixed calendar order used for the weekday chart. The
// dataset records no Saturday trade, so Saturday is not reindexed.
var weekdayOrder = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Sunday"}

const topProductCount = 10

func totalAmount(t models.Transaction) float64 { return t.TotalAmount }

// MonthlyRevenue sums revenue per year-month bucket, ordered chronologically
func (s *Service) MonthlyRevenue(sales *models.TransactionSet) []models.SeriesPoint {
	return s.GroupedAggregate(sales,
		func(t models.Transaction) string { return t.MonthYear },
		totalAmount, AggSum)
}

// TopProducts returns the ten best-selling products by revenue
func (s *Service) TopProducts(sales *models.TransactionSet) []models.SeriesPoint {
	byProduct := s.GroupedAggregate(sales,
		func(t models.Transaction) string { return t.Description },
		totalAmount, AggSum)
	return TopN(byProduct, topProductCount)
}

// CountrySales sums revenue per country
func (s *Service) CountrySales(sales *models.TransactionSet) []models.SeriesPoint {
	return s.GroupedAggregate(sales,
		func(t models.Transaction) string { return t.Country },
		totalAmount, AggSum)
}

// HourlySales sums revenue per hour of day, ordered 0-23
func (s *Service) HourlySales(sales *models.TransactionSet) []models.SeriesPoint {
	points := s.GroupedAggregate(sales,
		func(t models.Transaction) string { return strconv.Itoa(t.Hour) },
		totalAmount, AggSum)

	// Key sort is lexicographic; reorder numerically
	byHour := make(map[string]float64, len(points))
	for _, p := range points {
		byHour[p.Key] = p.Value
	}

	ordered := make([]models.SeriesPoint, 0, len(points))
	for hour := 0; hour < 24; hour++ {
		key := strconv.Itoa(hour)
		if v, ok := byHour[key]; ok {
			ordered = append(ordered, models.SeriesPoint{Key: key, Value: v})
		}
	}
	return ordered
}

// TopReturns returns the ten most-returned products by unit count
func (s *Service) TopReturns(returns *models.TransactionSet) []models.SeriesPoint {
	byProduct := s.GroupedAggregate(returns,
		func(t models.Transaction) string { return t.Description },
		func(t models.Transaction) float64 { return float64(t.Quantity) },
		AggSum)
	return TopN(byProduct, topProductCount)
}

// AOVByCountry returns the ten countries with the highest average order value
func (s *Service) AOVByCountry(sales *models.TransactionSet) []models.SeriesPoint {
	revenue := s.GroupedAggregate(sales,
		func(t models.Transaction) string { return t.Country },
		totalAmount, AggSum)
	orders := s.GroupedNUnique(sales,
		func(t models.Transaction) string { return t.Country },
		func(t models.Transaction) string { return t.Invoice })

	orderCount := make(map[string]float64, len(orders))
	for _, p := range orders {
		orderCount[p.Key] = p.Value
	}

	aov := make([]models.SeriesPoint, 0, len(revenue))
	for _, p := range revenue {
		if n := orderCount[p.Key]; n > 0 {
			aov = append(aov, models.SeriesPoint{Key: p.Key, Value: p.Value / n})
		}
	}
	return TopN(aov, topProductCount)
}

// MonthlyActiveCustomers counts distinct customers per year-month bucket
func (s *Service) MonthlyActiveCustomers(sales *models.TransactionSet) []models.SeriesPoint {
	return s.GroupedNUnique(sales,
		func(t models.Transaction) string { return t.MonthYear },
		func(t models.Transaction) string { return t.CustomerID })
}

// WeekdayRevenue computes the mean transaction revenue per weekday, reindexed
// to the fixed calendar order. Missing days appear with a zero value.
func (s *Service) WeekdayRevenue(sales *models.TransactionSet) []models.SeriesPoint {
	points := s.GroupedAggregate(sales,
		func(t models.Transaction) string { return t.DayOfWeek },
		totalAmount, AggMean)

	byDay := make(map[string]float64, len(points))
	for _, p := range points {
		byDay[p.Key] = p.Value
	}

	ordered := make([]models.SeriesPoint, 0, len(weekdayOrder))
	for _, day := range weekdayOrder {
		ordered = append(ordered, models.SeriesPoint{Key: day, Value: byDay[day]})
	}
	return ordered
}
