package infrastructure

import (
	"context"
	"errors"
	"sync"
)

// ErrWorkerStopped est retournée quand on soumet une tâche à un worker arrêté
var ErrWorkerStopped = errors.New("worker is stopped")

// Task représente une tâche à exécuter
type Task func(ctx context.Context) error

// SerialWorker exécute les tâches une par une, dans l'ordre de soumission.
// La file permet au producteur de préparer la tâche suivante pendant que
// la précédente s'exécute, sans jamais réordonner.
// La première erreur est conservée et arrête le worker.
type SerialWorker struct {
	tasks  chan Task
	done   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc

	mu  sync.Mutex
	err error
}

// NewSerialWorker crée un worker avec une file de `queue` tâches en attente
func NewSerialWorker(ctx context.Context, queue int) *SerialWorker {
	if queue < 0 {
		queue = 0
	}
	ctx, cancel := context.WithCancel(ctx)
	return &SerialWorker{
		tasks:  make(chan Task, queue),
		done:   make(chan struct{}),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start démarre la routine d'exécution
func (w *SerialWorker) Start() {
	go w.run()
}

// run est la routine d'exécution des tâches
func (w *SerialWorker) run() {
	defer close(w.done)

	for task := range w.tasks {
		if w.Err() != nil {
			// On vide la file sans exécuter
			continue
		}
		if err := w.ctx.Err(); err != nil {
			w.fail(err)
			continue
		}
		if err := task(w.ctx); err != nil {
			w.fail(err)
		}
	}
}

func (w *SerialWorker) fail(err error) {
	w.mu.Lock()
	if w.err == nil {
		w.err = err
	}
	w.mu.Unlock()
	w.cancel()
}

// Err retourne la première erreur rencontrée
func (w *SerialWorker) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// Submit met une tâche en file. Bloque si la file est pleine.
// Retourne l'erreur du worker s'il s'est déjà arrêté.
func (w *SerialWorker) Submit(task Task) error {
	if err := w.Err(); err != nil {
		return err
	}
	select {
	case <-w.ctx.Done():
		if err := w.Err(); err != nil {
			return err
		}
		return w.ctx.Err()
	case w.tasks <- task:
		return nil
	}
}

// Wait ferme la file, attend la fin des tâches et retourne la première erreur
func (w *SerialWorker) Wait() error {
	close(w.tasks)
	<-w.done
	w.cancel()
	return w.Err()
}
