package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pflanzen-manager/internal/model"
	"pflanzen-manager/internal/repository"
)

// PlantInput represents data required to create a plant.
type PlantInput struct {
	Name    string
	Species string
	Room    string
	Notes   string
}

// PlantService wraps room and plant management, including the cemetery.
type PlantService struct {
	plantRepo *repository.PlantRepository
	roomRepo  *repository.RoomRepository
	photoRepo *repository.PhotoRepository
}

func NewPlantService(plantRepo *repository.PlantRepository, roomRepo *repository.RoomRepository, photoRepo *repository.PhotoRepository) *PlantService {
	return &PlantService{plantRepo: plantRepo, roomRepo: roomRepo, photoRepo: photoRepo}
}

func (s *PlantService) CreatePlant(ctx context.Context, user *model.User, input PlantInput) (*model.Plant, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("name is required")
	}

	var roomID *uint
	if input.Room != "" {
		room, err := s.roomRepo.GetOrCreate(ctx, user.ID, input.Room)
		if err != nil {
			return nil, err
		}
		if room != nil {
			roomID = &room.ID
		}
	}

	plant := model.Plant{
		UserID:  user.ID,
		RoomID:  roomID,
		Name:    strings.TrimSpace(input.Name),
		Species: strings.TrimSpace(input.Species),
		Notes:   input.Notes,
	}
	if err := s.plantRepo.Create(ctx, &plant); err != nil {
		return nil, err
	}
	return &plant, nil
}

func (s *PlantService) GetPlant(ctx context.Context, user *model.User, plantID uint) (*model.Plant, error) {
	return s.plantRepo.FindByID(ctx, user.ID, plantID)
}

func (s *PlantService) ListPlants(ctx context.Context, user *model.User) ([]model.Plant, error) {
	return s.plantRepo.ListActive(ctx, user.ID)
}

func (s *PlantService) ListByRoom(ctx context.Context, user *model.User, roomID uint) ([]model.Plant, error) {
	return s.plantRepo.ListByRoom(ctx, user.ID, roomID)
}

func (s *PlantService) ListRooms(ctx context.Context, user *model.User) ([]model.Room, error) {
	return s.roomRepo.ListByUser(ctx, user.ID)
}

func (s *PlantService) GetRoom(ctx context.Context, user *model.User, roomID uint) (*model.Room, error) {
	return s.roomRepo.FindByID(ctx, user.ID, roomID)
}

// SetName updates the plant name, typically after an AI identification.
func (s *PlantService) SetName(ctx context.Context, plant *model.Plant, name, species string) error {
	if strings.TrimSpace(name) == "" {
		return nil
	}
	plant.Name = strings.TrimSpace(name)
	if species != "" {
		plant.Species = strings.TrimSpace(species)
	}
	return s.plantRepo.Save(ctx, plant)
}

// AddPhoto records a photo reference for a plant.
func (s *PlantService) AddPhoto(ctx context.Context, plant *model.Plant, fileID, caption string, takenAt time.Time) (*model.Photo, error) {
	photo := model.Photo{
		PlantID:        plant.ID,
		TelegramFileID: fileID,
		Caption:        caption,
		TakenAt:        takenAt,
	}
	if err := s.photoRepo.Create(ctx, &photo); err != nil {
		return nil, err
	}
	return &photo, nil
}

func (s *PlantService) ListPhotos(ctx context.Context, plantID uint) ([]model.Photo, error) {
	return s.photoRepo.ListByPlant(ctx, plantID)
}

// Archive moves a plant to the cemetery instead of deleting it.
func (s *PlantService) Archive(ctx context.Context, user *model.User, plantID uint, at time.Time) (*model.Plant, error) {
	plant, err := s.plantRepo.FindByID(ctx, user.ID, plantID)
	if err != nil {
		return nil, err
	}
	if err := s.plantRepo.Archive(ctx, plant, at); err != nil {
		return nil, err
	}
	return plant, nil
}

// Restore brings a plant back from the cemetery.
func (s *PlantService) Restore(ctx context.Context, user *model.User, plantID uint) (*model.Plant, error) {
	plant, err := s.plantRepo.FindByID(ctx, user.ID, plantID)
	if err != nil {
		return nil, err
	}
	if err := s.plantRepo.Restore(ctx, plant); err != nil {
		return nil, err
	}
	return plant, nil
}

func (s *PlantService) ListCemetery(ctx context.Context, user *model.User) ([]model.Plant, error) {
	return s.plantRepo.ListArchived(ctx, user.ID)
}

// DeleteForever removes a plant and all attached photos, tips and tasks.
func (s *PlantService) DeleteForever(ctx context.Context, user *model.User, plantID uint) error {
	plant, err := s.plantRepo.FindByID(ctx, user.ID, plantID)
	if err != nil {
		return err
	}
	return s.plantRepo.PermanentDelete(ctx, plant.ID)
}

// DeleteRoom removes a room and permanently deletes every plant in it.
func (s *PlantService) DeleteRoom(ctx context.Context, user *model.User, roomID uint) error {
	room, err := s.roomRepo.FindByID(ctx, user.ID, roomID)
	if err != nil {
		return err
	}

	var plants []model.Plant
	plants, err = s.plantRepo.ListByRoom(ctx, user.ID, room.ID)
	if err != nil {
		return err
	}
	archived, err := s.plantRepo.ListArchived(ctx, user.ID)
	if err != nil {
		return err
	}
	for _, plant := range archived {
		if plant.RoomID != nil && *plant.RoomID == room.ID {
			plants = append(plants, plant)
		}
	}

	for _, plant := range plants {
		if err := s.plantRepo.PermanentDelete(ctx, plant.ID); err != nil {
			return err
		}
	}
	return s.roomRepo.Delete(ctx, user.ID, room.ID)
}
