package weather

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	apperrors "github.com/NomadCrew/nomad-weather/errors"
	"github.com/NomadCrew/nomad-weather/logger"
	"github.com/NomadCrew/nomad-weather/types"
)

const (
	openMeteoGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"
	nominatimBaseURL      = "https://nominatim.openstreetmap.org"
	defaultUserAgent      = "NomadWeather/1.0"
)

// errNoMatch means a geocoder answered but knew no such place.
var errNoMatch = stderrors.New("no location found")

// place is a resolved location.
type place struct {
	Name        string
	Country     string
	Coordinates types.Coordinates
}

type geocoder struct {
	opts options
}

// resolveCity finds coordinates for a city name using Open-Meteo geocoding,
// falling back to Nominatim. The city is not found only when a geocoder
// answered without a match and neither found it.
func (g *geocoder) resolveCity(ctx context.Context, city string) (*place, error) {
	log := logger.GetLogger()

	p, primaryErr := g.primaryCoordinates(ctx, city)
	if primaryErr == nil {
		return p, nil
	}

	log.Warnw("Primary geocoding failed, falling back to Nominatim",
		"city", city,
		"error", primaryErr)

	p, fallbackErr := g.nominatimCoordinates(ctx, city)
	if fallbackErr == nil {
		return p, nil
	}

	log.Errorw("Both geocoding services failed",
		"city", city,
		"error", fallbackErr)

	if stderrors.Is(primaryErr, errNoMatch) || stderrors.Is(fallbackErr, errNoMatch) {
		return nil, apperrors.CityNotFound(city)
	}
	return nil, apperrors.Network(fallbackErr, "geocoding failed")
}

func (g *geocoder) primaryCoordinates(ctx context.Context, city string) (*place, error) {
	params := url.Values{}
	params.Add("name", city)
	params.Add("count", "1")
	params.Add("format", "json")

	var geoResp struct {
		Results []struct {
			Name        string  `json:"name"`
			CountryCode string  `json:"country_code"`
			Latitude    float64 `json:"latitude"`
			Longitude   float64 `json:"longitude"`
		} `json:"results"`
	}

	if err := getJSON(ctx, g.opts.httpClient, g.opts.geocodingURL, params, nil, &geoResp); err != nil {
		if stderrors.Is(err, errNotFound) {
			return nil, fmt.Errorf("%w for: %s", errNoMatch, city)
		}
		return nil, err
	}

	if len(geoResp.Results) == 0 {
		return nil, fmt.Errorf("%w for: %s", errNoMatch, city)
	}

	r := geoResp.Results[0]
	return &place{
		Name:        r.Name,
		Country:     strings.ToUpper(r.CountryCode),
		Coordinates: types.Coordinates{Latitude: r.Latitude, Longitude: r.Longitude},
	}, nil
}

type nominatimAddress struct {
	City        string `json:"city"`
	Town        string `json:"town"`
	Village     string `json:"village"`
	Hamlet      string `json:"hamlet"`
	CountryCode string `json:"country_code"`
}

func (a nominatimAddress) locality() string {
	for _, name := range []string{a.City, a.Town, a.Village, a.Hamlet} {
		if name != "" {
			return name
		}
	}
	return ""
}

// nominatimHeaders carries the User-Agent required by Nominatim's usage policy.
func (g *geocoder) nominatimHeaders() map[string]string {
	return map[string]string{"User-Agent": g.opts.userAgent}
}

func (g *geocoder) nominatimCoordinates(ctx context.Context, city string) (*place, error) {
	params := url.Values{}
	params.Add("q", city)
	params.Add("format", "json")
	params.Add("addressdetails", "1")
	params.Add("limit", "1")

	var nominatimResp []struct {
		Lat         string           `json:"lat"`
		Lon         string           `json:"lon"`
		DisplayName string           `json:"display_name"`
		Address     nominatimAddress `json:"address"`
	}

	endpoint := strings.TrimRight(g.opts.nominatimURL, "/") + "/search"
	if err := getJSON(ctx, g.opts.httpClient, endpoint, params, g.nominatimHeaders(), &nominatimResp); err != nil {
		return nil, err
	}

	if len(nominatimResp) == 0 {
		return nil, fmt.Errorf("%w for: %s", errNoMatch, city)
	}

	r := nominatimResp[0]
	lat, err := strconv.ParseFloat(r.Lat, 64)
	if err != nil {
		return nil, apperrors.Network(fmt.Errorf("invalid latitude: %s", r.Lat), "invalid geocoding response")
	}
	lon, err := strconv.ParseFloat(r.Lon, 64)
	if err != nil {
		return nil, apperrors.Network(fmt.Errorf("invalid longitude: %s", r.Lon), "invalid geocoding response")
	}

	name := r.Address.locality()
	if name == "" {
		name = strings.TrimSpace(strings.Split(r.DisplayName, ",")[0])
	}

	return &place{
		Name:        name,
		Country:     strings.ToUpper(r.Address.CountryCode),
		Coordinates: types.Coordinates{Latitude: lat, Longitude: lon},
	}, nil
}

// reverse names the place at coordinates. It is best effort: on any failure
// the returned place has empty Name and Country.
func (g *geocoder) reverse(ctx context.Context, coords types.Coordinates) place {
	result := place{Coordinates: coords}

	params := url.Values{}
	params.Add("lat", fmt.Sprintf("%f", coords.Latitude))
	params.Add("lon", fmt.Sprintf("%f", coords.Longitude))
	params.Add("format", "json")
	params.Add("zoom", "10")

	var resp struct {
		Address nominatimAddress `json:"address"`
	}

	endpoint := strings.TrimRight(g.opts.nominatimURL, "/") + "/reverse"
	if err := getJSON(ctx, g.opts.httpClient, endpoint, params, g.nominatimHeaders(), &resp); err != nil {
		logger.GetLogger().Debugw("Reverse geocoding failed", "coordinates", coords.String(), "error", err)
		return result
	}

	result.Name = resp.Address.locality()
	result.Country = strings.ToUpper(resp.Address.CountryCode)
	return result
}
