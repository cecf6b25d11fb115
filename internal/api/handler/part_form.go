package handler

import (
	"strconv"
	"strings"

	"github.com/pcparts/marketplace/internal/core/domain"
	"github.com/pcparts/marketplace/internal/core/ports"
)

// partForm is the create/edit form as submitted. Fields stay strings so the
// form can be redisplayed exactly as entered.
type partForm struct {
	Name               string   `form:"name"               validate:"required,max=200"`
	Type               string   `form:"type"               validate:"required,parttype"`
	Socket             string   `form:"socket"`
	Price              string   `form:"price"`
	Hashtags           string   `form:"hashtags"`
	IsPublic           string   `form:"isPublic"`
	ExtraDetailsNames  []string `form:"extraDetailsNames"`
	ExtraDetailsValues []string `form:"extraDetailsValues"`
}

func (f partForm) toInput(im *images) ports.PartInput {
	in := ports.PartInput{
		Name:              f.Name,
		Type:              f.Type,
		Socket:            f.Socket,
		Price:             f.Price,
		Hashtags:          f.Hashtags,
		IsPublic:          f.IsPublic == "true",
		ExtraDetailNames:  f.ExtraDetailsNames,
		ExtraDetailValues: f.ExtraDetailsValues,
	}
	if im != nil {
		in.Thumbnail = im.thumbnail
		in.Previews = im.previews
	}
	return in
}

// formFromPart prefills the edit form with the stored values.
func formFromPart(p domain.Part) partForm {
	f := partForm{
		Name:     p.Name,
		Type:     p.Type,
		Price:    strconv.FormatFloat(p.Price, 'f', -1, 64),
		Hashtags: strings.Join(p.Hashtags, ", "),
	}
	if p.Socket != nil {
		f.Socket = *p.Socket
	}
	if p.IsPublic {
		f.IsPublic = "true"
	}
	for _, d := range p.ExtraDetails {
		f.ExtraDetailsNames = append(f.ExtraDetailsNames, d.Name)
		f.ExtraDetailsValues = append(f.ExtraDetailsValues, d.Value)
	}
	return f
}
