package main

import "fmt"

func main() {
	a := 2
	sum := a + 3
	fmt.Println(sum * 2)
	fmt.Println(sum)
}

//<<<<<inline,7,2,7,5,pass
